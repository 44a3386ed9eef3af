// Package report summarizes pairing effectiveness across a tree of index
// records, comparing the built-in matcher against externally recorded
// AI_matches annotations where present.
package report

// Package pairing pairs the content files of one directory with its preview
// images.
//
// The engine is pure: it takes in-memory filename lists and a learned-pairs
// snapshot, never touches the filesystem, and never mutates caller slices.
// Content files are visited in order and each claims at most one preview, so
// earlier content files win ambiguous previews. Previews nobody claims are
// returned as unmatched.
package pairing

// Package main hosts the pairdex CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the scanner, learned store, and catalog from it, and renders results as
// tables or JSON. Matching and persistence live in the internal packages;
// commands here only wire them together and format output.
package main

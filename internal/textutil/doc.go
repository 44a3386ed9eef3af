// Package textutil provides the filename text handling shared by the matcher
// and the scanner.
//
// The primary use cases are:
//   - Folding and splitting filenames into comparable basenames
//   - Generating the separator variant set for a basename (Normalize)
//   - Classifying image extensions for preview candidates
//   - Token fingerprints and cosine similarity for the optional similarity backend
//
// Every function here is pure. Normalize always returns the same sorted variant
// set for the same input, so callers can cache results freely (VariantCache).
package textutil

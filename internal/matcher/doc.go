// Package matcher finds the preview image for a single content basename.
//
// Matching runs an ordered list of phases and the first phase that hits wins:
// learned lookup, learned-pattern rewrite, exact normalized match (with the
// preview suffix vocabulary), prefix match, and an optional token-similarity
// phase. Within a phase the first candidate in listing order wins. Only
// candidates classified as images take part.
package matcher

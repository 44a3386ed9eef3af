// Package index builds and persists the per-directory index.json record that
// lists which content files found a preview, which did not, and which images
// were left over.
//
// The four core keys are rebuilt on every scan. Any other top-level key found
// in a previous record is carried forward untouched so annotations written by
// other tools survive a rescan.
package index

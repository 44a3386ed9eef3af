// Package scanner walks a directory tree, pairs the content files of each
// directory with their previews, and writes one index record per directory.
//
// A batch loads a single learned snapshot up front and processes directories
// in parallel on an errgroup bounded by scan.workers. Failures are counted
// per directory and never abort the batch. Pairs learned while a batch runs
// take effect on the next one.
package scanner

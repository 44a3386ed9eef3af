// Package catalog records scan history in a SQLite database so reports can
// be produced without walking the tree again.
//
// Each scan gets a run row; each directory keeps only its latest summary.
// Writes retry on SQLITE_BUSY with a short backoff because the scanner and a
// concurrent `pairdex report --catalog` may touch the database together.
package catalog

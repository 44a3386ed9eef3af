// Package metrics provides Prometheus instrumentation for pairdex.
//
// All metrics are prefixed with "pairdex_" and registered on the default
// registry through promauto. They are exposed over HTTP by
// `pairdex watch --metrics`; one-shot commands update them but nothing
// scrapes the process.
//
// # Metric Categories
//
// ## Scan Metrics
//   - ScanRunsTotal: Counter of scan batches
//   - ScanDuration: Histogram of batch duration
//   - ScanRunning: Gauge, 1 while a batch is in progress
//   - LastScanTimestamp: Gauge of the last batch completion time
//
// ## Directory Metrics
//   - DirectoriesScanned: Counter of directories whose record was written
//   - DirectoryErrors: Counter of directories that failed, by reason
//   - PairsTotal: Counter of pairing outcomes by match method
//
// ## Learning and Watch Metrics
//   - LearnedPairs: Gauge of learned pairs in the loaded snapshot
//   - RescansTotal: Counter of single-directory rescans by trigger
package metrics

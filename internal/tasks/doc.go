// Package tasks runs long-running library operations.
//
// [Exporter.BulkExport] writes many playlists concurrently:
//
//   - a producer feeds playlists to a bounded pool of workers
//   - each worker renders one playlist with the formatter package and writes it to its own file
//   - results keep the input order, failures are collected rather than aborting the run
//   - a JSON manifest summarizing the run is written last
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends use select with default so a slow
// or absent reader never stalls the workers.
package tasks

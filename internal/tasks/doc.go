// Package tasks runs long-lived offline jobs over the tracking database with real-time progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] writes one file set per user to an output directory:
//   - a single producer loads each [models.ActivityHistory] through a [HistorySource], paced by a token bucket
//   - a bounded pool of workers renders histories with the formatter package (json, csv, markdown, txt)
//   - failures are collected per user instead of aborting the run
//   - an export_manifest.json summarizing every user is written last
//
// # Progress Reporting
//
// Progress goes out on an optional channel of [ProgressUpdate] values.
// Sends use select with default, so a slow or absent reader never stalls the export.
package tasks

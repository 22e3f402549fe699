// Package metrics implements the lock-free in-process counters and latency
// histograms behind the root credkit metrics API.
//
// # Components
//
//   - [Metrics]: cache-line padded atomic counters, one per [MetricID].
//   - [Snapshot]: point-in-time deep copy for exporters.
//   - An 8-bucket millisecond histogram for the authenticate path.
//
// # Architecture boundaries
//
// This package owns counting and snapshotting only. Export formats
// (Prometheus text, OTel instruments) live under metrics/export and consume
// [Snapshot] values.
//
// # What this package must NOT do
//
//   - Allocate on the increment or observe path.
//   - Import credkit or any sibling internal package.
//   - Perform any I/O.
package metrics

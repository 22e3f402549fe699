// Package prometheus renders credkit metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [credkit.Engine] and exposes an
// [net/http.Handler] that renders all credkit counters and the authenticate
// latency histogram. Counter names are prefixed credkit_*_total; the
// histogram is credkit_authenticate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the
//     Handler.
//   - Mutate engine state.
package prometheus

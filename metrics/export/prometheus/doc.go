// Package prometheus renders goCinema metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [goCinema.Engine] and exposes an [http.Handler]
// plus a plain Render for command line tools. Engine counters are rendered as
// labelled families (gocinema_auth_operations_total{operation,outcome},
// gocinema_catalog_cache_requests_total{result}, ...), followed by the
// gocinema_catalog_fetch_latency_seconds histogram and the per event_type
// gocinema_events_delivered_total and gocinema_events_dropped_total families.
// Each family gets one HELP and TYPE line.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus

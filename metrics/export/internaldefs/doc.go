// Package internaldefs maps engine metric IDs onto the exported metric
// families shared by the Prometheus and OTel exporters.
//
// Engine counters are grouped into labelled families: login, signup, logout
// and refresh outcomes share gocinema_auth_operations_total with operation
// and outcome labels, cache hits and misses share
// gocinema_catalog_cache_requests_total with a result label. Event families
// carry one series per event_type. Bucket bounds for the fetch latency
// histogram live here as well, so both exporters publish identical names,
// labels and boundaries.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs

// Package otel provides OpenTelemetry metric exporter bindings for goCinema counters and
// histograms.
//
// [NewOTelExporter] registers one Int64ObservableCounter per metric family,
// with series told apart by attributes (operation and outcome, result,
// event_type). The fetch latency histogram is published as a bucket gauge
// with an le attribute plus a count gauge. A single callback reads
// [goCinema.Engine.MetricsSnapshot] and [goCinema.Engine.EventStats] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel

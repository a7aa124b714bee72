// Package otel publishes aspxauth engine counters and histograms through OpenTelemetry.
//
// [NewOTelExporter] registers an Int64ObservableCounter for each engine counter and an
// Int64ObservableGauge per histogram bucket. A single callback reads
// [aspxauth.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel

// Package prometheus renders aspxauth engine metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts an [aspxauth.Engine] and exposes an [http.Handler].
// Counter names are prefixed aspxauth_*_total; the single histogram is
// aspxauth_decode_latency_seconds and aspxauth_engine_info carries the protection mode.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus

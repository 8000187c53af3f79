// Package otel publishes hrauth engine metrics through an OpenTelemetry
// [metric.Meter].
//
// Counters become Int64ObservableCounter instruments. The login latency
// histogram is flattened into one Int64ObservableGauge per cumulative bucket
// plus a count gauge. hrauth_session_state and
// hrauth_session_expires_at_seconds are gauges read from the session
// snapshot. A single callback takes one snapshot per collection.
//
// The caller owns the MeterProvider; this package never mutates engine
// state.
package otel

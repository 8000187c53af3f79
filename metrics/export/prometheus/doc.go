// Package prometheus renders hrauth engine metrics in Prometheus text
// exposition format without a client library or global registry; callers
// mount [PrometheusExporter.Handler] where they like.
//
// Counters are named hrauth_*_total and the single histogram is
// hrauth_login_latency_seconds. The session gauges hrauth_session_state and
// hrauth_session_expires_at_seconds are rendered even while counters are
// disabled.
package prometheus

package hrauth

import (
	"context"
	"io"
	"log/slog"

	internalaudit "github.com/MrEthical07/hrauth/internal/audit"
	internalmetrics "github.com/MrEthical07/hrauth/internal/metrics"
	"github.com/MrEthical07/hrauth/jwt"
)

// RedirectTarget is an application path the caller should navigate to.
type RedirectTarget string

// Authenticator exchanges credentials for a bearer token.
// *authapi.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, subjectID, secret string) (string, error)
}

// Decoder turns a bearer token into claims. *jwt.Decoder satisfies it.
type Decoder interface {
	Decode(token string) (jwt.Claims, error)
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink is an [AuditSink] that writes events through a [slog.Logger].
type SlogSink = internalaudit.SlogSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink creates a [SlogSink] that logs to log.
func NewSlogSink(log *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(log)
}

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess                 = MetricID(internalmetrics.MetricLoginSuccess)
	MetricLoginFailure                 = MetricID(internalmetrics.MetricLoginFailure)
	MetricLogout                       = MetricID(internalmetrics.MetricLogout)
	MetricSessionRestored              = MetricID(internalmetrics.MetricSessionRestored)
	MetricSessionDiscarded             = MetricID(internalmetrics.MetricSessionDiscarded)
	MetricCredentialStoreError         = MetricID(internalmetrics.MetricCredentialStoreError)
	MetricDecisionLoading              = MetricID(internalmetrics.MetricDecisionLoading)
	MetricDecisionRedirectLogin        = MetricID(internalmetrics.MetricDecisionRedirectLogin)
	MetricDecisionRedirectRoleHome     = MetricID(internalmetrics.MetricDecisionRedirectRoleHome)
	MetricDecisionAllow                = MetricID(internalmetrics.MetricDecisionAllow)
	MetricDecisionRedirectUnauthorized = MetricID(internalmetrics.MetricDecisionRedirectUnauthorized)
	// MetricLoginLatency is the only histogram.
	MetricLoginLatency = MetricID(internalmetrics.MetricLoginLatency)
)

// Metrics holds atomic counters and the optional login latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}

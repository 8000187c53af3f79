package internaldefs

import (
	"github.com/MrEthical07/hrauth"
	"github.com/MrEthical07/hrauth/session"
)

// Source is what exporters read on every scrape or collection.
// *hrauth.Engine satisfies it.
type Source interface {
	MetricsSnapshot() hrauth.MetricsSnapshot
	AuditDropped() uint64
	Session() session.Session
}

// CounterDef binds a counter to its exported name.
type CounterDef struct {
	ID   hrauth.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram to its exported name.
type HistogramDef struct {
	ID   hrauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: hrauth.MetricLoginSuccess, Name: "hrauth_login_success_total", Help: "Successful logins."},
	{ID: hrauth.MetricLoginFailure, Name: "hrauth_login_failure_total", Help: "Failed logins, including unusable tokens and store failures."},
	{ID: hrauth.MetricLogout, Name: "hrauth_logout_total", Help: "Logout operations."},
	{ID: hrauth.MetricSessionRestored, Name: "hrauth_session_restored_total", Help: "Sessions restored from the credential store at initialize."},
	{ID: hrauth.MetricSessionDiscarded, Name: "hrauth_session_discarded_total", Help: "Stored tokens discarded as malformed or expired."},
	{ID: hrauth.MetricCredentialStoreError, Name: "hrauth_credential_store_error_total", Help: "Credential store read, write or clear failures."},
	{ID: hrauth.MetricDecisionLoading, Name: "hrauth_decision_loading_total", Help: "Navigation decisions made before initialize finished."},
	{ID: hrauth.MetricDecisionRedirectLogin, Name: "hrauth_decision_redirect_login_total", Help: "Navigation decisions redirecting to login."},
	{ID: hrauth.MetricDecisionRedirectRoleHome, Name: "hrauth_decision_redirect_role_home_total", Help: "Navigation decisions redirecting to the role home."},
	{ID: hrauth.MetricDecisionAllow, Name: "hrauth_decision_allow_total", Help: "Navigation decisions allowing the request."},
	{ID: hrauth.MetricDecisionRedirectUnauthorized, Name: "hrauth_decision_redirect_unauthorized_total", Help: "Navigation decisions redirecting to the unauthorized page."},
}

// GaugeDef derives a gauge from the current session snapshot.
type GaugeDef struct {
	Name  string
	Help  string
	Value func(session.Session) int64
}

// GaugeDefs lists the session gauges. They are exported even when counters
// are disabled.
var GaugeDefs = []GaugeDef{
	{
		Name:  "hrauth_session_state",
		Help:  "Session state: 0 uninitialized, 1 unauthenticated, 2 authenticated.",
		Value: func(s session.Session) int64 { return int64(s.State()) },
	},
	{
		Name: "hrauth_session_expires_at_seconds",
		Help: "Unix expiry of the session token; 0 without a user.",
		Value: func(s session.Session) int64 {
			if s.User == nil {
				return 0
			}
			return s.User.ExpiresAt
		},
	},
}

// AuditDroppedName is the counter of audit events lost to a full queue.
const (
	AuditDroppedName = "hrauth_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher queue was full."
)

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: hrauth.MetricLoginLatency, Name: "hrauth_login_latency_seconds", Help: "Login round-trip latency histogram."},
}

// HistogramBounds are the upper bounds of the latency buckets in seconds.
var HistogramBounds = []string{
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"+Inf",
}

// HistogramBoundSuffix names each bucket for exporters that cannot carry
// labels.
var HistogramBoundSuffix = []string{
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

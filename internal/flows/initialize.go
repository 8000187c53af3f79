package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/hrauth/session"
)

// Discard reasons reported by RunInitialize.
const (
	ReasonStoreUnavailable = "store_unavailable"
	ReasonMalformedToken   = "malformed_token"
	ReasonExpiredToken     = "expired_token"
)

// InitializeMetrics carries metric IDs used by the initialize flow.
type InitializeMetrics struct {
	SessionRestored  int
	SessionDiscarded int
	StoreError       int
}

// InitializeEvents carries audit event names used by the initialize flow.
type InitializeEvents struct {
	SessionRestored  string
	SessionDiscarded string
}

// InitializeDeps captures initialize flow dependencies.
type InitializeDeps struct {
	Store   TokenStore
	Decoder Decoder
	Now     func() time.Time
	Hooks   Hooks

	Metrics InitializeMetrics
	Events  InitializeEvents
}

// InitializeResult is the session user restored from the store, or nil.
// Discarded names why a stored token was not used.
type InitializeResult struct {
	User      *session.User
	Discarded string
}

// RunInitialize restores the session from the credential store. A token
// that does not decode, or whose expiry is not after now, is cleared and
// yields no user. No failure escapes this flow.
func RunInitialize(ctx context.Context, deps InitializeDeps) InitializeResult {
	h := deps.Hooks.withDefaults()
	if deps.Now == nil {
		deps.Now = time.Now
	}

	token, ok, err := deps.Store.Get(ctx)
	if err != nil {
		h.MetricInc(deps.Metrics.StoreError)
		h.Warn("credential store read failed; starting unauthenticated", "error", err)
		return InitializeResult{Discarded: ReasonStoreUnavailable}
	}
	if !ok {
		h.Debug("no stored credential")
		return InitializeResult{}
	}

	claims, err := deps.Decoder.Decode(token)
	if err != nil {
		h.Debug("stored token did not decode", "error", err)
		discard(ctx, deps, h, ReasonMalformedToken, "", "")
		return InitializeResult{Discarded: ReasonMalformedToken}
	}
	if claims.Expired(deps.Now()) {
		h.Debug("stored token expired", "subject_id", claims.SubjectID, "expires_at", claims.ExpiresAtTime())
		discard(ctx, deps, h, ReasonExpiredToken, claims.SubjectID, claims.RoleID)
		return InitializeResult{Discarded: ReasonExpiredToken}
	}

	user := session.FromClaims(claims)
	h.MetricInc(deps.Metrics.SessionRestored)
	h.EmitAudit(ctx, AuditRecord{
		Event:     deps.Events.SessionRestored,
		SubjectID: user.SubjectID,
		RoleID:    user.RoleID,
		Success:   true,
	})
	return InitializeResult{User: user}
}

func discard(ctx context.Context, deps InitializeDeps, h Hooks, reason, subjectID, roleID string) {
	if err := deps.Store.Clear(ctx); err != nil {
		h.MetricInc(deps.Metrics.StoreError)
		h.Warn("credential store clear failed", "reason", reason, "error", err)
	}
	h.MetricInc(deps.Metrics.SessionDiscarded)
	h.EmitAudit(ctx, AuditRecord{
		Event:     deps.Events.SessionDiscarded,
		SubjectID: subjectID,
		RoleID:    roleID,
		Reason:    reason,
	})
}

package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/hrauth/authapi"
	"github.com/MrEthical07/hrauth/session"
)

// Login failure reasons recorded in audit events.
const (
	ReasonRejected     = "rejected"
	ReasonUnreachable  = "unreachable"
	ReasonUnusable     = "unusable_token"
	ReasonStoreFailure = "store_failure"
)

// LoginMetrics carries metric IDs used by the login flow.
type LoginMetrics struct {
	LoginSuccess int
	LoginFailure int
	StoreError   int
	LoginLatency int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess string
	LoginFailure string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady  error
	CredentialStore error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Authenticate func(ctx context.Context, subjectID, secret string) (string, error)
	Store        TokenStore
	Decoder      Decoder
	Now          func() time.Time
	RoleHome     func(roleID string) string
	NewAttemptID func() string
	Hooks        Hooks

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// LoginResult is the user produced by a successful login and the page the
// caller should be sent to. User is nil on failure.
type LoginResult struct {
	User   *session.User
	Target string
}

// RunLogin exchanges credentials for a token, persists it and builds the
// session user. On any failure the stored token is cleared and the result
// carries no user; authentication failures are returned unchanged.
func RunLogin(ctx context.Context, subjectID, secret string, deps LoginDeps) (LoginResult, error) {
	h := deps.Hooks.withDefaults()
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewAttemptID == nil {
		deps.NewAttemptID = func() string { return "" }
	}
	if deps.Authenticate == nil || deps.Store == nil || deps.Decoder == nil || deps.RoleHome == nil {
		return LoginResult{}, deps.Errors.EngineNotReady
	}

	attempt := deps.NewAttemptID()
	started := deps.Now()
	defer func() { h.Observe(deps.Metrics.LoginLatency, deps.Now().Sub(started)) }()

	fail := func(reason string, err error) (LoginResult, error) {
		if clearErr := deps.Store.Clear(ctx); clearErr != nil {
			h.MetricInc(deps.Metrics.StoreError)
			h.Warn("credential store clear failed after login failure", "attempt_id", attempt, "error", clearErr)
		}
		h.MetricInc(deps.Metrics.LoginFailure)
		h.EmitAudit(ctx, AuditRecord{
			Event:     deps.Events.LoginFailure,
			AttemptID: attempt,
			SubjectID: subjectID,
			Reason:    reason,
		})
		return LoginResult{}, err
	}

	token, err := deps.Authenticate(ctx, subjectID, secret)
	if err != nil {
		reason := ReasonRejected
		var authErr *authapi.AuthenticationError
		if errors.As(err, &authErr) && authErr.Status == 0 {
			reason = ReasonUnreachable
		}
		return fail(reason, err)
	}

	claims, err := deps.Decoder.Decode(token)
	if err != nil {
		h.Warn("login returned a token that does not decode", "attempt_id", attempt, "error", err)
		return fail(ReasonUnusable, &authapi.AuthenticationError{Detail: "Login service returned an unusable token"})
	}
	if claims.Expired(deps.Now()) {
		h.Warn("login returned an expired token", "attempt_id", attempt, "expires_at", claims.ExpiresAtTime())
		return fail(ReasonUnusable, &authapi.AuthenticationError{Detail: "Login service returned an expired token"})
	}

	if err := deps.Store.Set(ctx, token); err != nil {
		h.MetricInc(deps.Metrics.StoreError)
		return fail(ReasonStoreFailure, fmt.Errorf("%w: %v", deps.Errors.CredentialStore, err))
	}

	user := session.FromClaims(claims)
	h.MetricInc(deps.Metrics.LoginSuccess)
	h.EmitAudit(ctx, AuditRecord{
		Event:     deps.Events.LoginSuccess,
		AttemptID: attempt,
		SubjectID: user.SubjectID,
		RoleID:    user.RoleID,
		Success:   true,
	})
	return LoginResult{User: user, Target: deps.RoleHome(user.RoleID)}, nil
}

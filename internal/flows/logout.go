package flows

import (
	"context"
	"fmt"

	"github.com/MrEthical07/hrauth/session"
)

// LogoutMetrics carries metric IDs used by the logout flow.
type LogoutMetrics struct {
	Logout     int
	StoreError int
}

// LogoutEvents carries audit event names used by the logout flow.
type LogoutEvents struct {
	Logout string
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Store     TokenStore
	LoginPath string
	Hooks     Hooks

	Metrics LogoutMetrics
	Events  LogoutEvents
	Errors  LogoutErrors
}

// LogoutErrors carries host-level sentinel errors used by the logout flow.
type LogoutErrors struct {
	CredentialStore error
}

// RunLogout clears the stored token and returns the login path. It is
// idempotent. current is the user being logged out, if any, and is only
// used for auditing. The returned error reports a failed clear; the target
// is valid either way.
func RunLogout(ctx context.Context, current *session.User, deps LogoutDeps) (string, error) {
	h := deps.Hooks.withDefaults()

	rec := AuditRecord{Event: deps.Events.Logout, Success: true}
	if current != nil {
		rec.SubjectID = current.SubjectID
		rec.RoleID = current.RoleID
	}

	var err error
	if clearErr := deps.Store.Clear(ctx); clearErr != nil {
		h.MetricInc(deps.Metrics.StoreError)
		h.Warn("credential store clear failed on logout", "error", clearErr)
		rec.Success = false
		rec.Reason = ReasonStoreFailure
		err = fmt.Errorf("%w: %v", deps.Errors.CredentialStore, clearErr)
	}

	h.MetricInc(deps.Metrics.Logout)
	h.EmitAudit(ctx, rec)
	return deps.LoginPath, err
}

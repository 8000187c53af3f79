package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/hrauth/jwt"
)

// Deps groups flow dependency sets. The engine builds this once and
// delegates lifecycle methods to the matching flow.
type Deps struct {
	Initialize InitializeDeps
	Login      LoginDeps
	Logout     LogoutDeps
}

// AuditRecord is the flow-local audit event shape.
type AuditRecord struct {
	Event     string
	AttemptID string
	SubjectID string
	RoleID    string
	Success   bool
	Reason    string
}

// TokenStore is the credential store surface flows use.
type TokenStore interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Decoder turns a token into claims.
type Decoder interface {
	Decode(token string) (jwt.Claims, error)
}

// Hooks are the observability callbacks shared by every flow. Nil members
// are replaced with no-ops.
type Hooks struct {
	MetricInc func(id int)
	Observe   func(id int, d time.Duration)
	EmitAudit func(ctx context.Context, rec AuditRecord)
	Debug     func(msg string, args ...any)
	Warn      func(msg string, args ...any)
}

func (h Hooks) withDefaults() Hooks {
	if h.MetricInc == nil {
		h.MetricInc = func(int) {}
	}
	if h.Observe == nil {
		h.Observe = func(int, time.Duration) {}
	}
	if h.EmitAudit == nil {
		h.EmitAudit = func(context.Context, AuditRecord) {}
	}
	if h.Debug == nil {
		h.Debug = func(string, ...any) {}
	}
	if h.Warn == nil {
		h.Warn = func(string, ...any) {}
	}
	return h
}

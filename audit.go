package hrauth

import (
	"context"

	internalaudit "github.com/MrEthical07/hrauth/internal/audit"
	"github.com/MrEthical07/hrauth/internal/flows"
)

// Audit event types.
const (
	AuditLoginSuccess     = "login_success"
	AuditLoginFailure     = "login_failure"
	AuditLogout           = "logout"
	AuditSessionRestored  = "session_restored"
	AuditSessionDiscarded = "session_discarded"
)

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *internalaudit.Dispatcher {
	if sink == nil {
		return nil
	}
	return internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}

func (e *Engine) emitAudit(ctx context.Context, rec flows.AuditRecord) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, AuditEvent{
		Timestamp: e.now(),
		Type:      rec.Event,
		AttemptID: rec.AttemptID,
		SubjectID: rec.SubjectID,
		RoleID:    rec.RoleID,
		Success:   rec.Success,
		Reason:    rec.Reason,
	})
}

package credkit

import (
	"context"
	"time"

	internalaudit "github.com/credkit/credkit/internal/audit"
)

const (
	auditEventAuthSuccess      = "auth_success"
	auditEventAuthFailure      = "auth_failure"
	auditEventAuthThrottled    = "auth_throttled"
	auditEventRegisterSuccess  = "register_success"
	auditEventRegisterConflict = "register_conflict"
	auditEventRegisterFailure  = "register_failure"
	auditEventSecretSet        = "secret_set"
	auditEventAttemptsReset    = "attempts_reset"
)

// emitAudit builds and dispatches an audit event. The metadata closure is
// only invoked when a dispatcher is attached, keeping map allocation off the
// hot path for engines built without audit.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, identifier string, failure error, metadata func() map[string]string) {
	if e.audit == nil {
		return
	}

	ev := internalaudit.Event{
		Timestamp:  time.Now(),
		EventType:  eventType,
		Identifier: identifier,
		IP:         clientIPFromContext(ctx),
		Success:    success,
	}
	if failure != nil {
		ev.Error = failure.Error()
	}
	if metadata != nil {
		ev.Metadata = metadata()
	}

	e.audit.Emit(ctx, ev)
}

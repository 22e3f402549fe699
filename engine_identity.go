package credkit

import (
	"context"
	"strings"
)

/*
====================================
IDENTITY RESOLUTION
====================================
*/

// Serialize reduces a principal to the stable key used to restore it later,
// its primary identifier.
func (e *Engine) Serialize(principal Credential) string {
	return principal.Identifier()
}

// Deserialize restores a principal from a serialized key. The inverse of
// [Engine.Serialize].
func (e *Engine) Deserialize(ctx context.Context, key string) (Credential, error) {
	return e.FindByIdentifier(ctx, key)
}

// FindByIdentifier looks a principal up by primary identifier, applying the
// configured case normalization. Returns [ErrRecordNotFound] when nothing
// matches.
func (e *Engine) FindByIdentifier(ctx context.Context, identifier string) (Credential, error) {
	if e.store == nil {
		return nil, ErrEngineNotReady
	}
	if e.config.Fields.LowercaseIdentifier {
		identifier = strings.ToLower(identifier)
	}
	return e.findOne(ctx, e.config.Fields.IdentifierField, identifier)
}

// FindBySecondaryIdentifier looks a principal up by secondary identifier.
// The secondary identifier is always compared lower-cased.
func (e *Engine) FindBySecondaryIdentifier(ctx context.Context, identifier string) (Credential, error) {
	if e.store == nil {
		return nil, ErrEngineNotReady
	}
	return e.findOne(ctx, e.config.Fields.SecondaryIdentifierField, strings.ToLower(identifier))
}

/*
====================================
ADMINISTRATIVE
====================================
*/

// ResetAttempts clears the record's failure counter and persists it. Intended
// for administrative unlock of a throttled account.
func (e *Engine) ResetAttempts(ctx context.Context, record Credential) error {
	if e.store == nil {
		return ErrEngineNotReady
	}
	record.SetFailureCount(0)
	if err := e.store.Save(ctx, record); err != nil {
		return err
	}
	e.metricInc(MetricAttemptsReset)
	e.emitAudit(ctx, auditEventAttemptsReset, true, record.Identifier(), nil, nil)
	return nil
}

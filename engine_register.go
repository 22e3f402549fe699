package credkit

import (
	"context"
	"errors"
	"strings"

	"github.com/credkit/credkit/password"
)

/*
====================================
REGISTRATION
====================================
*/

// Register validates and persists a new principal record with the given
// secret. Checks run in a fixed order: missing primary identifier, missing
// secondary identifier, primary uniqueness, secondary uniqueness, secret
// derivation, persistence. The first failing check wins.
//
// The uniqueness checks and the final save are sequential reads and writes,
// not one atomic operation. Two racing registrations for the same identifier
// can both pass the checks; a store-level unique constraint is the backstop.
func (e *Engine) Register(ctx context.Context, record Credential, secret string) (Credential, error) {
	if e.store == nil || e.scheme == nil {
		return nil, ErrEngineNotReady
	}
	if record.Identifier() == "" {
		e.metricInc(MetricRegisterInvalid)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrMissingIdentifier, nil)
		return nil, ErrMissingIdentifier
	}
	if record.SecondaryIdentifier() == "" {
		e.metricInc(MetricRegisterInvalid)
		e.emitAudit(ctx, auditEventRegisterFailure, false, record.Identifier(), ErrMissingSecondaryIdentifier, nil)
		return nil, ErrMissingSecondaryIdentifier
	}

	identifier := record.Identifier()
	if e.config.Fields.LowercaseIdentifier {
		identifier = strings.ToLower(identifier)
		record.SetIdentifier(identifier)
	}
	secondary := strings.ToLower(record.SecondaryIdentifier())
	record.SetSecondaryIdentifier(secondary)

	existing, err := e.findOne(ctx, e.config.Fields.IdentifierField, identifier)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		e.metricInc(MetricRegisterConflict)
		e.emitAudit(ctx, auditEventRegisterConflict, false, identifier, ErrIdentifierExists, nil)
		return nil, ErrIdentifierExists
	}

	existing, err = e.findOne(ctx, e.config.Fields.SecondaryIdentifierField, secondary)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		e.metricInc(MetricRegisterConflict)
		e.emitAudit(ctx, auditEventRegisterConflict, false, identifier, ErrSecondaryIdentifierExists, nil)
		return nil, ErrSecondaryIdentifierExists
	}

	if err := e.applySecret(record, secret); err != nil {
		if errors.Is(err, ErrMissingSecret) {
			e.metricInc(MetricRegisterInvalid)
			e.emitAudit(ctx, auditEventRegisterFailure, false, identifier, err, nil)
		}
		return nil, err
	}

	if err := e.store.Save(ctx, record); err != nil {
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, identifier, nil, nil)
	return record, nil
}

/*
====================================
SECRET LIFECYCLE
====================================
*/

// SetSecret derives a fresh salt and digest for the record and persists it.
// No verification of any previous secret is performed; use [Engine.ChangeSecret]
// for the self-service path.
func (e *Engine) SetSecret(ctx context.Context, record Credential, secret string) error {
	if e.store == nil || e.scheme == nil {
		return ErrEngineNotReady
	}
	if err := e.applySecret(record, secret); err != nil {
		return err
	}
	if err := e.store.Save(ctx, record); err != nil {
		return err
	}
	e.metricInc(MetricSecretSet)
	e.emitAudit(ctx, auditEventSecretSet, true, record.Identifier(), nil, nil)
	return nil
}

// ChangeSecret verifies the current secret before replacing it. The old
// digest must verify; a record that never had a secret set cannot go through
// this path.
func (e *Engine) ChangeSecret(ctx context.Context, record Credential, oldSecret, newSecret string) error {
	if e.store == nil || e.scheme == nil {
		return ErrEngineNotReady
	}
	if oldSecret == "" || newSecret == "" {
		return ErrMissingSecret
	}
	if record.Salt() == "" {
		return ErrNoCredential
	}

	ok, err := e.scheme.Verify(oldSecret, record.Salt(), record.Digest())
	if err != nil {
		return err
	}
	if !ok {
		e.emitAudit(ctx, auditEventSecretSet, false, record.Identifier(), ErrIncorrectSecret, nil)
		return ErrIncorrectSecret
	}

	return e.SetSecret(ctx, record, newSecret)
}

// applySecret derives digest and salt and writes both onto the record. Both
// fields are set together or not at all.
func (e *Engine) applySecret(record Credential, secret string) error {
	digest, salt, err := e.scheme.SetSecret(secret)
	if err != nil {
		if errors.Is(err, password.ErrEmptySecret) {
			return ErrMissingSecret
		}
		return err
	}
	record.SetDigest(digest)
	record.SetSalt(salt)
	return nil
}

package credkit

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	internalaudit "github.com/credkit/credkit/internal/audit"
	internalmetrics "github.com/credkit/credkit/internal/metrics"
	"github.com/credkit/credkit/password"
)

/*
====================================
ENGINE
====================================
*/

// Engine is the credential-management core. It is immutable after Build and
// safe for concurrent use; all per-principal state lives on the records the
// injected [Store] persists.
type Engine struct {
	config  Config
	store   Store
	scheme  *password.Scheme
	audit   *internalaudit.Dispatcher
	metrics *internalmetrics.Metrics
}

// Close flushes and stops the audit dispatcher. Safe to call on an engine
// built without audit.
func (e *Engine) Close() {
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of all in-process metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

/*
====================================
AUTHENTICATION
====================================
*/

// Authenticate resolves the identifier to a record and verifies the secret
// against it. The primary identifier field is tried first, then the
// secondary; an identifier matching neither yields a ReasonUnknownIdentifier
// decision without touching the store or the KDF.
//
// A non-nil error means the decision could not be made (store failure, KDF
// failure). Every expected outcome, success included, arrives through the
// [AuthResult].
func (e *Engine) Authenticate(ctx context.Context, identifier, secret string) (*AuthResult, error) {
	if e.store == nil || e.scheme == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}()
	}

	primary := identifier
	if e.config.Fields.LowercaseIdentifier {
		primary = strings.ToLower(primary)
	}

	record, err := e.findOne(ctx, e.config.Fields.IdentifierField, primary)
	if errors.Is(err, ErrRecordNotFound) {
		record, err = e.findOne(ctx, e.config.Fields.SecondaryIdentifierField, strings.ToLower(identifier))
	}
	if errors.Is(err, ErrRecordNotFound) {
		e.metricInc(MetricAuthUnknownIdentifier)
		e.emitAudit(ctx, auditEventAuthFailure, false, identifier, nil, func() map[string]string {
			return map[string]string{"reason": ReasonUnknownIdentifier.String()}
		})
		return e.failure(ReasonUnknownIdentifier), nil
	}
	if err != nil {
		return nil, err
	}

	return e.AuthenticateRecord(ctx, record, secret)
}

// AuthenticateRecord verifies a secret against an already-resolved record.
// The throttle check runs before any digest work: an attempt inside the
// window is rejected without the KDF ever seeing the secret.
func (e *Engine) AuthenticateRecord(ctx context.Context, record Credential, secret string) (*AuthResult, error) {
	if e.store == nil || e.scheme == nil {
		return nil, ErrEngineNotReady
	}

	now := time.Now()

	if e.config.Throttle.Enabled {
		delay := e.throttleDelay(record.FailureCount())
		if now.Sub(record.LastAttemptAt()) < delay {
			// The rejected attempt still refreshes the timestamp, so hammering
			// a locked account keeps it locked. The failure counter is not
			// advanced.
			record.SetLastAttemptAt(now)
			if err := e.store.Save(ctx, record); err != nil {
				return nil, err
			}
			e.metricInc(MetricAuthThrottled)
			e.emitAudit(ctx, auditEventAuthThrottled, false, record.Identifier(), nil, func() map[string]string {
				return map[string]string{
					"reason": ReasonTooSoon.String(),
					"delay":  delay.String(),
				}
			})
			return e.failure(ReasonTooSoon), nil
		}
	}

	if record.Salt() == "" {
		e.metricInc(MetricAuthNoCredential)
		e.emitAudit(ctx, auditEventAuthFailure, false, record.Identifier(), nil, func() map[string]string {
			return map[string]string{"reason": ReasonNoCredential.String()}
		})
		return e.failure(ReasonNoCredential), nil
	}

	ok, err := e.scheme.Verify(secret, record.Salt(), record.Digest())
	if err != nil {
		return nil, err
	}

	if ok {
		if e.config.Throttle.Enabled {
			record.SetLastAttemptAt(now)
			record.SetFailureCount(0)
			if err := e.store.Save(ctx, record); err != nil {
				return nil, err
			}
		}
		e.metricInc(MetricAuthSuccess)
		e.emitAudit(ctx, auditEventAuthSuccess, true, record.Identifier(), nil, nil)
		return &AuthResult{Principal: record}, nil
	}

	if e.config.Throttle.Enabled {
		record.SetLastAttemptAt(now)
		record.SetFailureCount(record.FailureCount() + 1)
		if err := e.store.Save(ctx, record); err != nil {
			return nil, err
		}
	}
	e.metricInc(MetricAuthIncorrectSecret)
	e.emitAudit(ctx, auditEventAuthFailure, false, record.Identifier(), nil, func() map[string]string {
		return map[string]string{"reason": ReasonIncorrectSecret.String()}
	})
	return e.failure(ReasonIncorrectSecret), nil
}

// throttleDelay computes the wait imposed after the given number of
// consecutive failures, capped at MaxInterval. The growth curve is
// interval^ln(failures+1) in milliseconds: the exponent, not the base,
// carries the failure count, and a clean record still yields a 1ms floor
// (any base to ln(1) is 1). Unusual, but load-bearing for existing
// deployments tuned against it.
func (e *Engine) throttleDelay(failures int) time.Duration {
	if failures < 0 {
		failures = 0
	}
	base := float64(e.config.Throttle.Interval.Milliseconds())
	delayMs := math.Pow(base, math.Log(float64(failures)+1))
	maxMs := float64(e.config.Throttle.MaxInterval.Milliseconds())
	if delayMs > maxMs {
		delayMs = maxMs
	}
	return time.Duration(delayMs) * time.Millisecond
}

/*
====================================
LOOKUP
====================================
*/

// findOne routes through FindOneWithOptions when lookup hints are configured
// and the store supports them, else plain FindOne.
func (e *Engine) findOne(ctx context.Context, field, value string) (Credential, error) {
	if len(e.config.Result.SelectFields) > 0 || len(e.config.Result.PopulateFields) > 0 {
		if os, ok := e.store.(OptionsStore); ok {
			return os.FindOneWithOptions(ctx, field, value, QueryOptions{
				SelectFields:   e.config.Result.SelectFields,
				PopulateFields: e.config.Result.PopulateFields,
			})
		}
	}
	return e.store.FindOne(ctx, field, value)
}

func (e *Engine) failure(reason FailureReason) *AuthResult {
	return &AuthResult{
		Reason:  reason,
		Message: e.config.message(reason),
	}
}

package credkit

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/credkit/credkit/internal/audit"
	internalmetrics "github.com/credkit/credkit/internal/metrics"
)

// Credential is the interface a principal record type must satisfy to be
// managed by the [Engine]. The engine composes with the caller's record type
// through these accessors instead of owning a schema of its own.
//
// Digest and Salt are always written together; an empty Salt means the record
// has never had a secret set. FailureCount and LastAttemptAt are only touched
// when throttling is enabled.
type Credential interface {
	Identifier() string
	SetIdentifier(string)
	SecondaryIdentifier() string
	SetSecondaryIdentifier(string)
	Digest() string
	SetDigest(string)
	Salt() string
	SetSalt(string)
	FailureCount() int
	SetFailureCount(int)
	LastAttemptAt() time.Time
	SetLastAttemptAt(time.Time)
}

// Store is the persistence collaborator. FindOne returns [ErrRecordNotFound]
// when no record matches; any other error is treated as an operational
// failure and propagated to the caller unchanged.
//
// The engine never caches records across calls: every operation re-reads
// before mutating, so correctness under concurrency reduces to the store's
// own atomicity guarantees.
type Store interface {
	FindOne(ctx context.Context, field, value string) (Credential, error)
	Save(ctx context.Context, record Credential) error
}

// QueryOptions carries result-field projection and related-record expansion
// hints for stores that support them.
type QueryOptions struct {
	SelectFields   []string
	PopulateFields []string
}

// OptionsStore is an optional Store extension. When the configured
// [ResultConfig] names select or populate fields and the injected store
// implements this interface, lookups go through FindOneWithOptions.
type OptionsStore interface {
	FindOneWithOptions(ctx context.Context, field, value string, opts QueryOptions) (Credential, error)
}

// FailureReason is the stable programmatic code attached to a failed
// authentication decision. Message text is configurable per reason; the codes
// are not.
type FailureReason int

const (
	// ReasonUnknownIdentifier: no record matched the primary or secondary
	// identifier.
	ReasonUnknownIdentifier FailureReason = iota
	// ReasonIncorrectSecret: the record exists but the secret did not verify.
	ReasonIncorrectSecret
	// ReasonTooSoon: the attempt arrived inside the throttle window and was
	// rejected without consulting the digest.
	ReasonTooSoon
	// ReasonNoCredential: the record exists but has never had a secret set.
	ReasonNoCredential
)

func (r FailureReason) String() string {
	switch r {
	case ReasonUnknownIdentifier:
		return "unknown_identifier"
	case ReasonIncorrectSecret:
		return "incorrect_secret"
	case ReasonTooSoon:
		return "too_soon"
	case ReasonNoCredential:
		return "no_credential"
	default:
		return "unknown"
	}
}

// AuthResult is the decision returned by [Engine.Authenticate]. Exactly one
// of Principal or Reason is meaningful: a non-nil Principal means the attempt
// succeeded, otherwise Reason and Message describe the failure.
type AuthResult struct {
	Principal Credential

	Reason  FailureReason
	Message string
}

// OK reports whether the attempt authenticated a principal.
func (r *AuthResult) OK() bool {
	return r != nil && r.Principal != nil
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricAuthSuccess counts successful authentications.
	MetricAuthSuccess = MetricID(internalmetrics.MetricAuthSuccess)
	// MetricAuthIncorrectSecret counts wrong-secret failures.
	MetricAuthIncorrectSecret = MetricID(internalmetrics.MetricAuthIncorrectSecret)
	// MetricAuthUnknownIdentifier counts lookups that matched no record.
	MetricAuthUnknownIdentifier = MetricID(internalmetrics.MetricAuthUnknownIdentifier)
	// MetricAuthThrottled counts attempts rejected inside the throttle window.
	MetricAuthThrottled = MetricID(internalmetrics.MetricAuthThrottled)
	// MetricAuthNoCredential counts attempts against records with no secret set.
	MetricAuthNoCredential = MetricID(internalmetrics.MetricAuthNoCredential)
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess = MetricID(internalmetrics.MetricRegisterSuccess)
	// MetricRegisterConflict counts registrations rejected on a uniqueness
	// conflict.
	MetricRegisterConflict = MetricID(internalmetrics.MetricRegisterConflict)
	// MetricRegisterInvalid counts registrations rejected on missing input.
	MetricRegisterInvalid = MetricID(internalmetrics.MetricRegisterInvalid)
	// MetricSecretSet counts secret-set and secret-change operations.
	MetricSecretSet = MetricID(internalmetrics.MetricSecretSet)
	// MetricAttemptsReset counts administrative failure-counter resets.
	MetricAttemptsReset = MetricID(internalmetrics.MetricAttemptsReset)
	// MetricAuthenticateLatency is the authenticate-path latency histogram.
	MetricAuthenticateLatency = MetricID(internalmetrics.MetricAuthenticateLatency)
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}

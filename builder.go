package credkit

import (
	"errors"
	"fmt"

	internalaudit "github.com/credkit/credkit/internal/audit"
	internalmetrics "github.com/credkit/credkit/internal/metrics"
	"github.com/credkit/credkit/password"
)

/*
====================================
BUILDER
====================================
*/

// Builder assembles an [Engine]. It is single-use: Build consumes the
// builder, and a second Build call fails.
type Builder struct {
	config    Config
	store     Store
	auditSink AuditSink

	built bool
}

// New starts a builder with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration. The config is deep-copied
// on Build, so later mutation of the caller's value has no effect.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore injects the persistence collaborator. Required.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	return b
}

// WithAuditSink injects the sink audit events are delivered to. Only
// consulted when Audit.Enabled is set; a nil sink with audit enabled falls
// back to [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the authenticate-path latency histogram.
// Implies nothing about counters; both switches are independent.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

/*
====================================
BUILD
====================================
*/

// Build validates the configuration, wires the hashing scheme, audit
// dispatcher, and metrics, and returns the immutable [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if b.store == nil {
		return nil, errors.New("store is required")
	}

	scheme, err := password.New(password.Config{
		SaltLength: b.config.Hashing.SaltLength,
		Iterations: b.config.Hashing.Iterations,
		KeyLength:  b.config.Hashing.KeyLength,
		Encoding:   b.config.Hashing.Encoding,
		Digest:     b.config.Hashing.Digest,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid hashing config: %w", err)
	}

	var dispatcher *internalaudit.Dispatcher
	if b.config.Audit.Enabled {
		sink := b.auditSink
		if sink == nil {
			sink = internalaudit.NoOpSink{}
		}
		dispatcher = internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    true,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: b.config.Audit.DropIfFull,
		}, sink)
	}

	eng := &Engine{
		config:  cloneConfig(b.config),
		store:   b.store,
		scheme:  scheme,
		audit:   dispatcher,
		metrics: internalmetrics.New(internalmetrics.Config{Enabled: b.config.Metrics.Enabled, EnableLatency: b.config.Metrics.EnableLatencyHistograms}),
	}

	return eng, nil
}

package credkit

import (
	"errors"
	"time"
)

// Config defines a public type used by credkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Fields   FieldConfig
	Hashing  HashingConfig
	Throttle ThrottleConfig
	Messages MessageConfig
	Result   ResultConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
FIELD CONFIG
====================================
*/

// FieldConfig names the record fields the engine reads and writes through
// the injected [Store], and controls identifier case normalization.
//
// The secondary identifier is always lower-cased before comparison and
// persistence; the primary identifier only when LowercaseIdentifier is set.
type FieldConfig struct {
	IdentifierField          string
	SecondaryIdentifierField string
	DigestField              string
	SaltField                string
	FailureCountField        string
	LastAttemptField         string
	LowercaseIdentifier      bool
}

/*
====================================
HASHING CONFIG
====================================
*/

// HashingConfig carries the key-derivation parameters. Records hashed under
// different parameters are mutually unverifiable; this is a stated
// constraint, not a defect.
type HashingConfig struct {
	SaltLength int    // random salt bytes, default 32
	Iterations int    // KDF iteration count, default 25000
	KeyLength  int    // derived key bytes, default 512
	Encoding   string // "hex" (default) or "base64"
	Digest     string // "sha256" (default), "sha1", or "sha512"
}

/*
====================================
THROTTLE CONFIG
====================================
*/

// ThrottleConfig controls the progressive-delay brute-force mitigation.
// The delay before the next allowed attempt is
//
//	min(MaxInterval, Interval^ln(failureCount+1))
//
// computed in milliseconds. When disabled, the failure counter and
// last-attempt timestamp are never touched.
type ThrottleConfig struct {
	Enabled     bool
	Interval    time.Duration
	MaxInterval time.Duration
}

/*
====================================
MESSAGE CONFIG
====================================
*/

// MessageConfig overrides the human-readable message attached to each
// failure reason. Empty fields fall back to the defaults. Reason codes are
// stable regardless of message text.
type MessageConfig struct {
	UnknownIdentifier string
	IncorrectSecret   string
	TooSoon           string
	NoCredential      string
}

// ResultConfig carries optional lookup hints forwarded to stores that
// implement [OptionsStore]: a result-field projection and a related-record
// expansion list.
type ResultConfig struct {
	SelectFields   []string
	PopulateFields []string
}

// AuditConfig defines a public type used by credkit APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by credkit APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Callers typically start
// here, flip the toggles they need, and pass the result to
// [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Fields: FieldConfig{
			IdentifierField:          "username",
			SecondaryIdentifierField: "email",
			DigestField:              "digest",
			SaltField:                "salt",
			FailureCountField:        "failure_count",
			LastAttemptField:         "last_attempt",
			LowercaseIdentifier:      false,
		},
		Hashing: HashingConfig{
			SaltLength: 32,
			Iterations: 25000,
			KeyLength:  512,
			Encoding:   "hex",
			Digest:     "sha256",
		},
		Throttle: ThrottleConfig{
			Enabled:     false,
			Interval:    100 * time.Millisecond,
			MaxInterval: 5 * time.Minute,
		},
		Messages: MessageConfig{
			UnknownIdentifier: "identifier or secret is incorrect",
			IncorrectSecret:   "identifier or secret is incorrect",
			TooSoon:           "account is currently locked, try again later",
			NoCredential:      "authentication not possible, no salt value stored",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Result.SelectFields = cloneStrings(cfg.Result.SelectFields)
	out.Result.PopulateFields = cloneStrings(cfg.Result.PopulateFields)
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internal consistency. It is called
// once by [Builder.Build]; the engine assumes a validated configuration
// afterwards.
func (c *Config) Validate() error {
	// Fields
	if c.Fields.IdentifierField == "" {
		return errors.New("Fields IdentifierField is required")
	}
	if c.Fields.SecondaryIdentifierField == "" {
		return errors.New("Fields SecondaryIdentifierField is required")
	}
	if c.Fields.IdentifierField == c.Fields.SecondaryIdentifierField {
		return errors.New("Fields IdentifierField and SecondaryIdentifierField must differ")
	}

	// Hashing
	if c.Hashing.SaltLength < 16 {
		return errors.New("Hashing SaltLength must be >= 16")
	}
	if c.Hashing.Iterations < 1 {
		return errors.New("Hashing Iterations must be >= 1")
	}
	if c.Hashing.KeyLength < 16 {
		return errors.New("Hashing KeyLength must be >= 16")
	}
	if c.Hashing.Encoding != "hex" && c.Hashing.Encoding != "base64" {
		return errors.New("Hashing Encoding must be 'hex' or 'base64'")
	}
	switch c.Hashing.Digest {
	case "sha1", "sha256", "sha512":
		// valid
	default:
		return errors.New("Hashing Digest must be sha1, sha256, or sha512")
	}

	// Throttle
	if c.Throttle.Enabled {
		if c.Throttle.Interval <= 0 {
			return errors.New("Throttle Interval must be > 0 when throttling is enabled")
		}
		if c.Throttle.MaxInterval < c.Throttle.Interval {
			return errors.New("Throttle MaxInterval must be >= Interval")
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}

// message resolves the configured human-readable text for a failure reason,
// falling back to the defaults for empty overrides.
func (c *Config) message(reason FailureReason) string {
	defaults := defaultConfig().Messages

	switch reason {
	case ReasonUnknownIdentifier:
		if c.Messages.UnknownIdentifier != "" {
			return c.Messages.UnknownIdentifier
		}
		return defaults.UnknownIdentifier
	case ReasonIncorrectSecret:
		if c.Messages.IncorrectSecret != "" {
			return c.Messages.IncorrectSecret
		}
		return defaults.IncorrectSecret
	case ReasonTooSoon:
		if c.Messages.TooSoon != "" {
			return c.Messages.TooSoon
		}
		return defaults.TooSoon
	case ReasonNoCredential:
		if c.Messages.NoCredential != "" {
			return c.Messages.NoCredential
		}
		return defaults.NoCredential
	default:
		return ""
	}
}

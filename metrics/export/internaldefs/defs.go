package internaldefs

import (
	"github.com/credkit/credkit"
)

// CounterDef binds a metric ID to its stable exported name.
type CounterDef struct {
	ID   credkit.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram metric ID to its stable exported name.
type HistogramDef struct {
	ID   credkit.MetricID
	Name string
	Help string
}

// CounterDefs is the canonical list of exported counters. Order is the
// render order.
var CounterDefs = []CounterDef{
	{ID: credkit.MetricAuthSuccess, Name: "credkit_auth_success_total", Help: "Successful authentications."},
	{ID: credkit.MetricAuthIncorrectSecret, Name: "credkit_auth_incorrect_secret_total", Help: "Authentications failed on an incorrect secret."},
	{ID: credkit.MetricAuthUnknownIdentifier, Name: "credkit_auth_unknown_identifier_total", Help: "Authentications failed on an unknown identifier."},
	{ID: credkit.MetricAuthThrottled, Name: "credkit_auth_throttled_total", Help: "Authentications rejected inside the throttle window."},
	{ID: credkit.MetricAuthNoCredential, Name: "credkit_auth_no_credential_total", Help: "Authentications against records without a stored credential."},
	{ID: credkit.MetricRegisterSuccess, Name: "credkit_register_success_total", Help: "Successful registrations."},
	{ID: credkit.MetricRegisterConflict, Name: "credkit_register_conflict_total", Help: "Registrations rejected on an identifier conflict."},
	{ID: credkit.MetricRegisterInvalid, Name: "credkit_register_invalid_total", Help: "Registrations rejected on missing input."},
	{ID: credkit.MetricSecretSet, Name: "credkit_secret_set_total", Help: "Secret set and change operations."},
	{ID: credkit.MetricAttemptsReset, Name: "credkit_attempts_reset_total", Help: "Administrative failure-counter resets."},
}

// HistogramDefs is the canonical list of exported histograms.
var HistogramDefs = []HistogramDef{
	{ID: credkit.MetricAuthenticateLatency, Name: "credkit_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the core
// millisecond buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix carries instrument-name-safe forms of the bounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets widens a raw snapshot slice into the fixed bucket array,
// zero-filling a short or absent slice.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms require.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

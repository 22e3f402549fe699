package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter or histogram slot.
type MetricID uint16

const (
	// MetricAuthSuccess counts successful authentications.
	MetricAuthSuccess MetricID = iota
	// MetricAuthIncorrectSecret counts wrong-secret failures.
	MetricAuthIncorrectSecret
	// MetricAuthUnknownIdentifier counts lookups that matched no record.
	MetricAuthUnknownIdentifier
	// MetricAuthThrottled counts attempts rejected inside the throttle window.
	MetricAuthThrottled
	// MetricAuthNoCredential counts attempts against records with no secret set.
	MetricAuthNoCredential
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess
	// MetricRegisterConflict counts registrations rejected on a uniqueness conflict.
	MetricRegisterConflict
	// MetricRegisterInvalid counts registrations rejected on missing input.
	MetricRegisterInvalid
	// MetricSecretSet counts secret-set and secret-change operations.
	MetricSecretSet
	// MetricAttemptsReset counts administrative failure-counter resets.
	MetricAttemptsReset
	// MetricAuthenticateLatency is the authenticate-path latency histogram.
	MetricAuthenticateLatency
	// MetricIDCount is the number of defined metric IDs.
	MetricIDCount
)

const (
	// HistBucketCount is the fixed number of latency histogram buckets.
	HistBucketCount = 8
	cacheLineSize   = 64
)

// Config controls which subsystems record anything.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

type histogram struct {
	buckets [HistBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds one padded atomic counter per MetricID plus the latency
// histogram. All methods are safe on a nil or disabled receiver.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	latency       histogram
}

// Snapshot is a point-in-time deep copy of all recorded values.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New constructs a Metrics instance. Latency recording requires both
// switches on.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Enabled reports whether counters record anything.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram records anything.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only MetricAuthenticateLatency carries a
// histogram; other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricAuthenticateLatency {
		return
	}
	atomic.AddUint64(&m.latency.buckets[bucketIndex(d)], 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot deep-copies every counter and histogram bucket. A disabled
// instance returns empty, non-nil maps.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, HistBucketCount)
		for i := 0; i < HistBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.latency.buckets[i])
		}
		s.Histograms[MetricAuthenticateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}

package credkit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// memRecord is an in-memory credential record for engine tests.
type memRecord struct {
	username    string
	email       string
	digest      string
	salt        string
	failures    int
	lastAttempt time.Time
}

func (r *memRecord) Identifier() string              { return r.username }
func (r *memRecord) SetIdentifier(v string)          { r.username = v }
func (r *memRecord) SecondaryIdentifier() string     { return r.email }
func (r *memRecord) SetSecondaryIdentifier(v string) { r.email = v }
func (r *memRecord) Digest() string                  { return r.digest }
func (r *memRecord) SetDigest(v string)              { r.digest = v }
func (r *memRecord) Salt() string                    { return r.salt }
func (r *memRecord) SetSalt(v string)                { r.salt = v }
func (r *memRecord) FailureCount() int               { return r.failures }
func (r *memRecord) SetFailureCount(v int)           { r.failures = v }
func (r *memRecord) LastAttemptAt() time.Time        { return r.lastAttempt }
func (r *memRecord) SetLastAttemptAt(t time.Time)    { r.lastAttempt = t }

// memStore keeps records in a slice and counts calls so tests can assert
// which paths touched persistence.
type memStore struct {
	records   []*memRecord
	findCalls int
	saveCalls int
	findErr   error
	saveErr   error
}

func (s *memStore) FindOne(_ context.Context, field, value string) (Credential, error) {
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, r := range s.records {
		switch field {
		case "username":
			if r.username == value {
				return r, nil
			}
		case "email":
			if r.email == value {
				return r, nil
			}
		}
	}
	return nil, ErrRecordNotFound
}

func (s *memStore) Save(_ context.Context, record Credential) error {
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	r, ok := record.(*memRecord)
	if !ok {
		return errors.New("unexpected record type")
	}
	for _, existing := range s.records {
		if existing == r {
			return nil
		}
	}
	s.records = append(s.records, r)
	return nil
}

func fastHashing() HashingConfig {
	return HashingConfig{
		SaltLength: 16,
		Iterations: 10,
		KeyLength:  32,
		Encoding:   "hex",
		Digest:     "sha256",
	}
}

func newTestEngine(t *testing.T, cfg Config, store Store) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Hashing = fastHashing()
	return cfg
}

func registerUser(t *testing.T, engine *Engine, username, email, secret string) *memRecord {
	t.Helper()

	record, err := engine.Register(context.Background(), &memRecord{username: username, email: email}, secret)
	if err != nil {
		t.Fatalf("Register %s: %v", username, err)
	}
	return record.(*memRecord)
}

func TestAuthenticateSuccess(t *testing.T) {
	store := &memStore{}
	engine := newTestEngine(t, testConfig(), store)
	registerUser(t, engine, "alice", "alice@example.com", "hunter22")

	res, err := engine.Authenticate(context.Background(), "alice", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected success, got reason %s: %s", res.Reason, res.Message)
	}
	if res.Principal.Identifier() != "alice" {
		t.Fatalf("wrong principal: %q", res.Principal.Identifier())
	}
}

func TestAuthenticateWrongSecret(t *testing.T) {
	store := &memStore{}
	engine := newTestEngine(t, testConfig(), store)
	record := registerUser(t, engine, "alice", "alice@example.com", "hunter22")

	res, err := engine.Authenticate(context.Background(), "alice", "wrong")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.OK() {
		t.Fatal("wrong secret must not authenticate")
	}
	if res.Reason != ReasonIncorrectSecret {
		t.Fatalf("reason = %s, want incorrect_secret", res.Reason)
	}
	if res.Message == "" {
		t.Fatal("failure result must carry a message")
	}

	// Throttling is off by default, so the counter must stay untouched.
	if record.failures != 0 {
		t.Fatalf("failure count = %d with throttling disabled", record.failures)
	}
}

func TestAuthenticateUnknownIdentifier(t *testing.T) {
	store := &memStore{}
	engine := newTestEngine(t, testConfig(), store)

	res, err := engine.Authenticate(context.Background(), "nobody", "whatever")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.OK() || res.Reason != ReasonUnknownIdentifier {
		t.Fatalf("expected unknown_identifier, got %+v", res)
	}
	if store.saveCalls != 0 {
		t.Fatalf("unknown identifier must not write, saw %d saves", store.saveCalls)
	}
}

func TestAuthenticateNoCredential(t *testing.T) {
	store := &memStore{records: []*memRecord{{username: "ghost", email: "ghost@example.com"}}}
	engine := newTestEngine(t, testConfig(), store)

	res, err := engine.Authenticate(context.Background(), "ghost", "anything")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.OK() || res.Reason != ReasonNoCredential {
		t.Fatalf("expected no_credential, got %+v", res)
	}
	if store.saveCalls != 0 {
		t.Fatalf("no-credential path must not write, saw %d saves", store.saveCalls)
	}
}

func TestAuthenticateBySecondaryIdentifier(t *testing.T) {
	store := &memStore{}
	engine := newTestEngine(t, testConfig(), store)
	registerUser(t, engine, "alice", "alice@example.com", "hunter22")

	// The secondary identifier is matched case-insensitively.
	res, err := engine.Authenticate(context.Background(), "Alice@Example.COM", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected success via secondary identifier, got %s", res.Reason)
	}
}

func TestAuthenticateLowercaseIdentifier(t *testing.T) {
	cfg := testConfig()
	cfg.Fields.LowercaseIdentifier = true

	store := &memStore{}
	engine := newTestEngine(t, cfg, store)
	record := registerUser(t, engine, "ALICE", "alice@example.com", "hunter22")

	if record.username != "alice" {
		t.Fatalf("registration must lowercase the identifier, got %q", record.username)
	}

	res, err := engine.Authenticate(context.Background(), "AlIcE", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected success with case-folded identifier, got %s", res.Reason)
	}
}

func TestAuthenticateCaseSensitiveByDefault(t *testing.T) {
	store := &memStore{}
	engine := newTestEngine(t, testConfig(), store)
	registerUser(t, engine, "alice", "alice@example.com", "hunter22")

	res, err := engine.Authenticate(context.Background(), "ALICE", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.OK() {
		t.Fatal("primary identifier must stay case-sensitive unless configured")
	}
}

func TestAuthenticateStoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	store := &memStore{findErr: boom}
	engine := newTestEngine(t, testConfig(), store)

	_, err := engine.Authenticate(context.Background(), "alice", "hunter22")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestAuthenticateCustomMessages(t *testing.T) {
	cfg := testConfig()
	cfg.Messages.UnknownIdentifier = "try again"

	engine := newTestEngine(t, cfg, &memStore{})

	res, err := engine.Authenticate(context.Background(), "nobody", "x")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.Message != "try again" {
		t.Fatalf("message = %q, want custom override", res.Message)
	}
}

func TestAuthenticateEmitsAuditEvents(t *testing.T) {
	sink := NewChannelSink(16)

	cfg := testConfig()
	cfg.Audit.Enabled = true

	store := &memStore{}
	engine, err := New().
		WithConfig(cfg).
		WithStore(store).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	registerUser(t, engine, "alice", "alice@example.com", "hunter22")

	ctx := WithClientIP(context.Background(), "192.0.2.7")
	if _, err := engine.Authenticate(ctx, "alice", "wrong"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	engine.Close()

	var got []AuditEvent
	for {
		select {
		case ev := <-sink.Events():
			got = append(got, ev)
			continue
		default:
		}
		break
	}

	if len(got) != 2 {
		t.Fatalf("expected register + auth events, got %d", len(got))
	}
	if got[0].EventType != "register_success" {
		t.Fatalf("first event = %q", got[0].EventType)
	}

	failure := got[1]
	if failure.EventType != "auth_failure" || failure.Success {
		t.Fatalf("unexpected failure event: %+v", failure)
	}
	if failure.Identifier != "alice" || failure.IP != "192.0.2.7" {
		t.Fatalf("event missing identity context: %+v", failure)
	}
	if failure.Metadata["reason"] != "incorrect_secret" {
		t.Fatalf("event metadata = %v", failure.Metadata)
	}
}

func TestAuthenticateMetrics(t *testing.T) {
	store := &memStore{}

	cfg := testConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	engine := newTestEngine(t, cfg, store)
	registerUser(t, engine, "alice", "alice@example.com", "hunter22")

	if _, err := engine.Authenticate(context.Background(), "alice", "hunter22"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := engine.Authenticate(context.Background(), "alice", "wrong"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := engine.Authenticate(context.Background(), "nobody", "x"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricAuthSuccess] != 1 {
		t.Fatalf("auth success = %d", snap.Counters[MetricAuthSuccess])
	}
	if snap.Counters[MetricAuthIncorrectSecret] != 1 {
		t.Fatalf("incorrect secret = %d", snap.Counters[MetricAuthIncorrectSecret])
	}
	if snap.Counters[MetricAuthUnknownIdentifier] != 1 {
		t.Fatalf("unknown identifier = %d", snap.Counters[MetricAuthUnknownIdentifier])
	}

	var samples uint64
	for _, v := range snap.Histograms[MetricAuthenticateLatency] {
		samples += v
	}
	if samples != 3 {
		t.Fatalf("latency samples = %d, want 3", samples)
	}
}

func TestZeroValueEngineNotReady(t *testing.T) {
	var engine Engine
	ctx := context.Background()
	record := &memRecord{username: "alice", email: "alice@example.com", salt: "s", digest: "d"}

	if _, err := engine.Authenticate(ctx, "alice", "pw"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Authenticate: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.AuthenticateRecord(ctx, record, "pw"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("AuthenticateRecord: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.Register(ctx, record, "pw"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Register: expected ErrEngineNotReady, got %v", err)
	}
	if err := engine.SetSecret(ctx, record, "pw"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("SetSecret: expected ErrEngineNotReady, got %v", err)
	}
	if err := engine.ChangeSecret(ctx, record, "pw", "next"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("ChangeSecret: expected ErrEngineNotReady, got %v", err)
	}
	if err := engine.ResetAttempts(ctx, record); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("ResetAttempts: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.FindByIdentifier(ctx, "alice"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("FindByIdentifier: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.FindBySecondaryIdentifier(ctx, "alice@example.com"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("FindBySecondaryIdentifier: expected ErrEngineNotReady, got %v", err)
	}
}

func TestFailureReasonStrings(t *testing.T) {
	cases := map[FailureReason]string{
		ReasonUnknownIdentifier: "unknown_identifier",
		ReasonIncorrectSecret:   "incorrect_secret",
		ReasonTooSoon:           "too_soon",
		ReasonNoCredential:      "no_credential",
	}
	for reason, want := range cases {
		if got := reason.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", reason, got, want)
		}
	}
	if !strings.Contains(FailureReason(99).String(), "unknown") {
		t.Fatal("out-of-range reason must stringify as unknown")
	}
}

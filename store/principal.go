package store

import "time"

// Principal is a ready-made credential record for callers without an
// existing data model. It satisfies the engine's record interface through
// the accessor methods below; the exported fields are the persisted shape.
type Principal struct {
	ID             string            `json:"id"`
	Username       string            `json:"username"`
	Email          string            `json:"email"`
	PasswordDigest string            `json:"digest,omitempty"`
	PasswordSalt   string            `json:"salt,omitempty"`
	Failures       int               `json:"failure_count,omitempty"`
	LastAttemptMS  int64             `json:"last_attempt_ms,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

func (p *Principal) Identifier() string              { return p.Username }
func (p *Principal) SetIdentifier(v string)          { p.Username = v }
func (p *Principal) SecondaryIdentifier() string     { return p.Email }
func (p *Principal) SetSecondaryIdentifier(v string) { p.Email = v }
func (p *Principal) Digest() string                  { return p.PasswordDigest }
func (p *Principal) SetDigest(v string)              { p.PasswordDigest = v }
func (p *Principal) Salt() string                    { return p.PasswordSalt }
func (p *Principal) SetSalt(v string)                { p.PasswordSalt = v }
func (p *Principal) FailureCount() int               { return p.Failures }
func (p *Principal) SetFailureCount(v int)           { p.Failures = v }

func (p *Principal) LastAttemptAt() time.Time {
	if p.LastAttemptMS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(p.LastAttemptMS)
}

func (p *Principal) SetLastAttemptAt(t time.Time) {
	if t.IsZero() {
		p.LastAttemptMS = 0
		return
	}
	p.LastAttemptMS = t.UnixMilli()
}

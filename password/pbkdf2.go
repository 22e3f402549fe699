package password

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"hash"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultSaltLength is the random salt size in bytes.
	DefaultSaltLength = 32
	// DefaultIterations is the PBKDF2 iteration count.
	DefaultIterations = 25000
	// DefaultKeyLength is the derived key size in bytes.
	DefaultKeyLength = 512

	// EncodingHex encodes salt and digest as lowercase hex.
	EncodingHex = "hex"
	// EncodingBase64 encodes salt and digest as standard base64.
	EncodingBase64 = "base64"

	minSaltLength = 16
	minKeyLength  = 16
)

// ErrEmptySecret is returned when an empty secret is offered for derivation.
var ErrEmptySecret = errors.New("no secret was given")

// Config carries the derivation parameters. Zero fields take the package
// defaults.
type Config struct {
	SaltLength int
	Iterations int
	KeyLength  int
	Encoding   string // "hex" or "base64"
	Digest     string // "sha1", "sha256", or "sha512"
}

// Scheme is a validated, immutable derivation scheme. Safe for concurrent
// use.
type Scheme struct {
	config Config
	hashFn func() hash.Hash
	encode func([]byte) string
}

// New validates the config, fills defaults, and returns the scheme.
func New(cfg Config) (*Scheme, error) {
	if cfg.SaltLength == 0 {
		cfg.SaltLength = DefaultSaltLength
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.KeyLength == 0 {
		cfg.KeyLength = DefaultKeyLength
	}
	if cfg.Encoding == "" {
		cfg.Encoding = EncodingHex
	}
	if cfg.Digest == "" {
		cfg.Digest = "sha256"
	}

	if cfg.SaltLength < minSaltLength {
		return nil, errors.New("salt length must be at least 16 bytes")
	}
	if cfg.Iterations < 1 {
		return nil, errors.New("iterations must be at least 1")
	}
	if cfg.KeyLength < minKeyLength {
		return nil, errors.New("key length must be at least 16 bytes")
	}

	s := &Scheme{config: cfg}

	switch cfg.Encoding {
	case EncodingHex:
		s.encode = hex.EncodeToString
	case EncodingBase64:
		s.encode = base64.StdEncoding.EncodeToString
	default:
		return nil, errors.New("encoding must be 'hex' or 'base64'")
	}

	switch cfg.Digest {
	case "sha1":
		s.hashFn = sha1.New
	case "sha256":
		s.hashFn = sha256.New
	case "sha512":
		s.hashFn = sha512.New
	default:
		return nil, errors.New("digest must be sha1, sha256, or sha512")
	}

	return s, nil
}

// SetSecret draws a fresh random salt and derives the digest for the secret.
// Both return values are encoded strings; the encoded salt, not its raw
// bytes, is what later verification must be given back.
func (s *Scheme) SetSecret(secret string) (digest, salt string, err error) {
	if secret == "" {
		return "", "", ErrEmptySecret
	}

	raw := make([]byte, s.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", "", err
	}

	salt = s.encode(raw)
	digest = s.derive(secret, salt)
	return digest, salt, nil
}

// Verify re-derives the digest for the secret under the stored salt and
// compares it to the expected digest in constant time.
func (s *Scheme) Verify(secret, salt, expected string) (bool, error) {
	if salt == "" {
		return false, errors.New("no salt value stored")
	}
	if expected == "" {
		return false, errors.New("no digest value stored")
	}

	computed := s.derive(secret, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expected)) == 1, nil
}

// derive feeds the encoded salt string into the KDF as its salt input. This
// matches how existing records were written and must not change.
func (s *Scheme) derive(secret, encodedSalt string) string {
	key := pbkdf2.Key([]byte(secret), []byte(encodedSalt), s.config.Iterations, s.config.KeyLength, s.hashFn)
	return s.encode(key)
}

// Package password implements salted PBKDF2 secret derivation and
// constant-time verification.
//
// # Derivation
//
// SetSecret draws a fresh random salt, encodes it, and derives the digest
// with the encoded salt string as the KDF salt input. Verification re-derives
// under the stored encoded salt and compares encoded digests in constant
// time. Records written under different parameters are mutually
// unverifiable.
//
// # Architecture boundaries
//
// This package owns key derivation and verification only. Throttling and
// lockout policy are enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve secrets. Callers supply plaintext and receive
//     encoded digest and salt strings.
//   - Import any other credkit package.
//   - Log plaintext secrets or derived keys at runtime.
package password

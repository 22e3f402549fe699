// Package credkit implements password-based credential management for an
// external principal record: salted PBKDF2 digest derivation and
// verification, progressive-delay brute-force throttling, identifier
// resolution, and registration with uniqueness checks.
//
// The package is designed to be attached to an existing user data model
// rather than to own one. Callers implement the [Credential] interface on
// their record type and the [Store] interface over their persistence layer,
// then construct an immutable [Engine] through the [Builder]:
//
//	engine, err := credkit.New().
//		WithConfig(credkit.DefaultConfig()).
//		WithStore(myStore).
//		Build()
//
// Authentication outcomes that are expected in normal operation (unknown
// identifier, wrong secret, throttled attempt, record without a credential)
// are returned as an [AuthResult] carrying a stable [FailureReason], not as
// errors. Only infrastructure failures (store errors, random-source failures,
// key-derivation failures) surface through the error return.
//
// # What this package must NOT do
//
//   - Issue sessions or tokens. Callers own the session layer.
//   - Implement the persistence engine. [Store] is injected.
//   - Coordinate throttling across service instances. The failure counter
//     lives on the persisted record and is only as consistent as the store.
package credkit

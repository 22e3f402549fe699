package credkit

import "errors"

var (
	// ErrMissingSecret is returned when an empty secret is supplied to
	// registration or a secret-set operation.
	ErrMissingSecret = errors.New("no secret was given")
	// ErrMissingIdentifier is returned by Register when the candidate record
	// carries no primary identifier.
	ErrMissingIdentifier = errors.New("no identifier was given")
	// ErrMissingSecondaryIdentifier is returned by Register when the candidate
	// record carries no secondary identifier.
	ErrMissingSecondaryIdentifier = errors.New("no secondary identifier was given")
	// ErrIdentifierExists is returned by Register on a primary identifier
	// uniqueness conflict.
	ErrIdentifierExists = errors.New("a principal with the given identifier is already registered")
	// ErrSecondaryIdentifierExists is returned by Register on a secondary
	// identifier uniqueness conflict.
	ErrSecondaryIdentifierExists = errors.New("a principal with the given secondary identifier is already registered")
	// ErrIncorrectSecret is returned by ChangeSecret when the supplied current
	// secret does not verify.
	ErrIncorrectSecret = errors.New("incorrect secret")
	// ErrNoCredential is returned by ChangeSecret when the record has never
	// had a secret set.
	ErrNoCredential = errors.New("no salt value stored")
	// ErrRecordNotFound is the sentinel Store implementations return from
	// FindOne when no record matches. The engine maps it to the
	// ReasonUnknownIdentifier decision during authentication.
	ErrRecordNotFound = errors.New("principal record not found")
	// ErrEngineNotReady indicates the Engine was not constructed through the
	// Builder.
	ErrEngineNotReady = errors.New("engine not initialized")
)

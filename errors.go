package prodigyfix

import "errors"

// Error taxonomy of the data layer. Mutation operations return these
// directly or wrapped; callers compare with errors.Is.
var (
	// ErrUnauthorized is returned when a mutation is attempted without an
	// authenticated actor.
	ErrUnauthorized = errors.New("unauthorized: no authenticated actor")

	// ErrNotFound is returned when a referenced tutorial does not exist.
	ErrNotFound = errors.New("tutorial not found")

	// ErrConnectivity wraps subscription and one-shot query failures to
	// reach the remote store.
	ErrConnectivity = errors.New("connectivity error")

	// ErrValidation wraps caller-supplied data that violates a field
	// constraint.
	ErrValidation = errors.New("validation error")
)

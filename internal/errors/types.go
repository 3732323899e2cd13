// Package errors classifies failures for the data layer's retry policies.
// A classified error tells callers whether another attempt can succeed.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category determines how an error is handled by retry logic.
type Category int

const (
	// Recoverable errors may succeed on retry: 5xx responses, timeouts,
	// connection resets.
	Recoverable Category = iota

	// Irrecoverable errors fail immediately without retry: 400, 401,
	// 403, 404 responses and validation failures.
	Irrecoverable
)

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps an error with retry metadata.
type ClassifiedError struct {
	Category   Category
	StatusCode int   // HTTP status code, 0 for non-HTTP errors
	Underlying error // the original error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// IsIrrecoverable reports whether err should not be retried. Classification
// survives wrapping with fmt.Errorf("%w").
func IsIrrecoverable(err error) bool {
	var classified *ClassifiedError
	return stderrors.As(err, &classified) && classified.Category == Irrecoverable
}

// Package blobstore abstracts the remote blob store's URL-signing API.
// The only operation the data layer needs is resolving an opaque object
// path to a fetchable URL; failures carry a classified code so the image
// resolver can decide whether to retry.
package blobstore

import (
	"context"
	"errors"
	"fmt"
)

// Code classifies a resolution failure.
type Code string

const (
	CodeObjectNotFound Code = "object-not-found"
	CodeUnauthorized   Code = "unauthorized"
	CodeCanceled       Code = "canceled"
	CodeUnknown        Code = "unknown"
)

// Error is the classified failure signal of the blob-store interface.
// Transient marks network-level failures that may succeed on retry;
// it is never set together with CodeObjectNotFound or CodeUnauthorized.
type Error struct {
	Code      Code
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("blobstore %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("blobstore %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the classification from err, defaulting to CodeUnknown.
func CodeOf(err error) Code {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	if errors.Is(err, context.Canceled) {
		return CodeCanceled
	}
	return CodeUnknown
}

// IsTransient reports whether err is a retryable network-level failure.
func IsTransient(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Transient
}

// Resolver resolves an opaque object path to a fetchable URL.
type Resolver interface {
	ResolveURL(ctx context.Context, path string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, path string) (string, error)

// ResolveURL implements Resolver.
func (f ResolverFunc) ResolveURL(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

package imageurl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/felipe-ssantos/prodigyfix/internal/blobstore"
)

// State is the per-identifier resolution state.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateResolved
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResolving:
		return "Resolving"
	case StateResolved:
		return "Resolved"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// FailureCode classifies a failed resolution for callers.
type FailureCode string

const (
	FailureNotFound     FailureCode = "not-found"
	FailureUnauthorized FailureCode = "unauthorized"
	FailureCanceled     FailureCode = "canceled"
	FailureUnknown      FailureCode = "unknown"
)

func failureFrom(err error) FailureCode {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureCanceled
	}
	switch blobstore.CodeOf(err) {
	case blobstore.CodeObjectNotFound:
		return FailureNotFound
	case blobstore.CodeUnauthorized:
		return FailureUnauthorized
	case blobstore.CodeCanceled:
		return FailureCanceled
	default:
		return FailureUnknown
	}
}

// Binding is a per-consumer resolution handle: a state machine
// Idle -> Resolving -> Resolved | Failed for whatever identifier the
// consumer currently wants. Changing the identifier cancels any in-flight
// request; a superseded request never applies its result, success or
// failure (last-request-wins via cancellation).
type Binding struct {
	r *Resolver

	mu     sync.Mutex
	key    string
	state  State
	url    string
	code   FailureCode
	err    error
	cancel context.CancelFunc
	gen    uint64
}

// Bind creates an idle Binding on this resolver.
func (r *Resolver) Bind() *Binding {
	return &Binding{r: r, state: StateIdle}
}

// Set points the binding at identifier and starts resolution if needed.
//
//   - Empty identifier: Idle immediately, no network call.
//   - Fully-qualified URL: Resolved immediately with that URL.
//   - Fresh cache entry: Resolved immediately.
//   - Otherwise: Resolving; a background attempt transitions to Resolved
//     or Failed unless superseded first.
func (b *Binding) Set(ctx context.Context, identifier string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.supersedeLocked()
	b.key = identifier
	b.startLocked(ctx, identifier)
}

// Retry clears error state and re-attempts the current identifier
// unconditionally.
func (b *Binding) Retry(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.supersedeLocked()
	b.startLocked(ctx, b.key)
}

// Close cancels any in-flight resolution and returns the binding to Idle.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.supersedeLocked()
	b.key = ""
	b.toIdleLocked()
}

// State returns the current state.
func (b *Binding) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// URL returns the resolved URL, empty unless state is Resolved.
func (b *Binding) URL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}

// Key returns the identifier the binding currently points at.
func (b *Binding) Key() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// Failure returns the failure classification and underlying error; zero
// values unless state is Failed.
func (b *Binding) Failure() (FailureCode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.code, b.err
}

// supersedeLocked cancels any in-flight request and bumps the generation
// so its eventual result is discarded.
func (b *Binding) supersedeLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.gen++
}

func (b *Binding) toIdleLocked() {
	b.state = StateIdle
	b.url = ""
	b.code = ""
	b.err = nil
}

func (b *Binding) startLocked(ctx context.Context, identifier string) {
	if identifier == "" {
		b.toIdleLocked()
		return
	}
	if hasScheme(identifier) {
		b.state = StateResolved
		b.url = identifier
		b.code = ""
		b.err = nil
		return
	}
	if url, ok := b.r.cache.Get(identifier); ok {
		cacheHitsTotal.Inc()
		b.state = StateResolved
		b.url = url
		b.code = ""
		b.err = nil
		return
	}

	b.state = StateResolving
	b.url = ""
	b.code = ""
	b.err = nil

	gen := b.gen
	reqCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	go func() {
		defer cancel()
		url, err := b.r.Resolve(reqCtx, identifier)

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.gen != gen {
			// Superseded by a later Set/Retry/Close: drop the result.
			return
		}
		b.cancel = nil
		if err != nil {
			b.state = StateFailed
			b.code = failureFrom(err)
			b.err = err
			return
		}
		b.state = StateResolved
		b.url = url
	}()
}

// Package imageurl resolves opaque image identifiers to fetchable URLs
// with caching, TTL expiry, in-flight cancellation, and bounded retry.
// A Resolver is the shared engine; each consumer holds a Binding, a small
// per-identifier state machine with last-request-wins semantics.
package imageurl

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/felipe-ssantos/prodigyfix/internal/blobstore"
	"github.com/felipe-ssantos/prodigyfix/internal/shardqueue"
)

// Resolver resolves identifiers through the blob store, caching results.
type Resolver struct {
	blobs       blobstore.Resolver
	cache       *Cache
	maxAttempts int
	step        time.Duration
	exec        *shardqueue.ShardExecutor

	closedOnce uint32
}

// Option configures a Resolver during construction.
type Option func(*Resolver)

// WithCache injects a shared cache instance.
func WithCache(c *Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithMaxAttempts bounds the attempts per resolution (transient errors
// only).
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithBackoffStep sets the linear backoff unit: attempt n waits n*step.
func WithBackoffStep(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.step = d
		}
	}
}

// New constructs a Resolver over the given blob store.
func New(blobs blobstore.Resolver, opts ...Option) *Resolver {
	r := &Resolver{
		blobs:       blobs,
		maxAttempts: 3,
		step:        time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewCache(DefaultTTL)
	}
	r.exec = shardqueue.NewShardExecutor(shardqueue.Config{Shards: 2, QueueSize: 64})
	return r
}

// Cache returns the resolver's cache for direct maintenance (sweeps,
// targeted invalidation).
func (r *Resolver) Cache() *Cache { return r.cache }

// ClearCache drops the cached resolution for identifier.
func (r *Resolver) ClearCache(identifier string) { r.cache.Delete(identifier) }

// Close stops the prefetch executor. Safe to call multiple times.
func (r *Resolver) Close() error {
	if !atomic.CompareAndSwapUint32(&r.closedOnce, 0, 1) {
		return nil
	}
	r.exec.Stop()
	return nil
}

// hasScheme reports whether the identifier is already a fully-qualified
// URL.
func hasScheme(identifier string) bool {
	return strings.HasPrefix(identifier, "http://") || strings.HasPrefix(identifier, "https://")
}

// Resolve maps an identifier to a fetchable URL.
//
//   - Empty identifier: returns "" with no error and no network call.
//   - Fully-qualified URL: returned unchanged, no cache entry created.
//   - Otherwise: cache lookup, then a blob-store resolution with up to
//     maxAttempts tries. Only transient errors are retried; waits grow
//     linearly (attempt * step).
func (r *Resolver) Resolve(ctx context.Context, identifier string) (string, error) {
	if identifier == "" {
		return "", nil
	}
	if hasScheme(identifier) {
		return identifier, nil
	}
	if url, ok := r.cache.Get(identifier); ok {
		cacheHitsTotal.Inc()
		return url, nil
	}
	cacheMissesTotal.Inc()

	op := func() (string, error) {
		url, err := r.blobs.ResolveURL(ctx, identifier)
		if err != nil {
			if blobstore.IsTransient(err) {
				return "", err
			}
			return "", backoff.Permanent(err)
		}
		return url, nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: r.step}, uint64(r.maxAttempts-1)),
		ctx,
	)
	url, err := backoff.RetryWithData(op, policy)
	if err != nil {
		resolutionsTotal.WithLabelValues(string(failureFrom(err))).Inc()
		return "", err
	}
	r.cache.Put(identifier, url)
	resolutionsTotal.WithLabelValues("ok").Inc()
	return url, nil
}

// Prefetch resolves and caches a batch of identifiers without rendering.
// Individual failures are logged, never surfaced: one bad identifier must
// not abort the batch. Work runs on the background executor keyed by
// identifier.
func (r *Resolver) Prefetch(ctx context.Context, identifiers []string) {
	for _, id := range identifiers {
		if id == "" || hasScheme(id) {
			continue
		}
		id := id
		job := shardqueue.JobFunc(func(jobCtx context.Context) error {
			if _, err := r.Resolve(jobCtx, id); err != nil {
				log.Warn().Err(err).Str("identifier", id).Msg("imageurl: prefetch failed")
			}
			return nil
		})
		if err := r.exec.Submit(ctx, id, job); err != nil {
			log.Warn().Err(err).Str("identifier", id).Msg("imageurl: prefetch not enqueued")
		}
	}
}

// AwaitPrefetch blocks until all previously submitted prefetches for the
// given identifiers have run.
func (r *Resolver) AwaitPrefetch(ctx context.Context, identifiers ...string) error {
	for _, id := range identifiers {
		if err := r.exec.Barrier(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// linearBackOff waits attempt*step between tries.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++
	return time.Duration(l.attempt) * l.step
}

func (l *linearBackOff) Reset() { l.attempt = 0 }

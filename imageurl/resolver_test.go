package imageurl

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/felipe-ssantos/prodigyfix/internal/blobstore"
)

// countingResolver counts calls and replays a scripted sequence of errors
// before succeeding.
type countingResolver struct {
	calls  int64
	script []error
	url    string
}

func (c *countingResolver) ResolveURL(_ context.Context, path string) (string, error) {
	n := atomic.AddInt64(&c.calls, 1)
	if int(n) <= len(c.script) {
		return "", c.script[n-1]
	}
	if c.url != "" {
		return c.url, nil
	}
	return "https://cdn.example.com/" + path, nil
}

func (c *countingResolver) count() int64 { return atomic.LoadInt64(&c.calls) }

func transientErr() error {
	return &blobstore.Error{Code: blobstore.CodeUnknown, Transient: true, Err: errors.New("503")}
}

func notFoundErr() error {
	return &blobstore.Error{Code: blobstore.CodeObjectNotFound, Err: errors.New("no such object")}
}

func newTestResolver(t *testing.T, blobs blobstore.Resolver, opts ...Option) *Resolver {
	t.Helper()
	opts = append([]Option{WithBackoffStep(time.Millisecond)}, opts...)
	r := New(blobs, opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestResolvePassthrough(t *testing.T) {
	blobs := &countingResolver{}
	r := newTestResolver(t, blobs)
	ctx := context.Background()

	url, err := r.Resolve(ctx, "")
	require.NoError(t, err)
	require.Empty(t, url, "empty identifier resolves to empty without a call")

	url, err = r.Resolve(ctx, "https://already.example.com/x.png")
	require.NoError(t, err)
	require.Equal(t, "https://already.example.com/x.png", url)

	require.Zero(t, blobs.count())
	require.Zero(t, r.Cache().Len(), "passthroughs never occupy cache slots")
}

func TestResolveCachesWithinTTL(t *testing.T) {
	blobs := &countingResolver{}
	cache := NewCache(30 * time.Minute)
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }
	r := newTestResolver(t, blobs, WithCache(cache))
	ctx := context.Background()

	first, err := r.Resolve(ctx, "img-1")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "img-1")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int64(1), blobs.count(), "second resolve within the TTL is served from cache")

	clock = clock.Add(31 * time.Minute)
	_, err = r.Resolve(ctx, "img-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), blobs.count(), "expired entry forces a fresh resolution")
}

func TestResolveRetriesTransientErrors(t *testing.T) {
	blobs := &countingResolver{script: []error{transientErr(), transientErr()}}
	r := newTestResolver(t, blobs)

	url, err := r.Resolve(context.Background(), "img-1")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/img-1", url)
	require.Equal(t, int64(3), blobs.count(), "two transient failures then success")
}

func TestResolveDoesNotRetryPermanentErrors(t *testing.T) {
	blobs := &countingResolver{script: []error{notFoundErr(), notFoundErr(), notFoundErr()}}
	r := newTestResolver(t, blobs)

	_, err := r.Resolve(context.Background(), "img-gone")
	require.Error(t, err)
	require.Equal(t, blobstore.CodeObjectNotFound, blobstore.CodeOf(err))
	require.Equal(t, int64(1), blobs.count(), "a not-found is terminal on the first attempt")
}

func TestResolveAttemptsAreBounded(t *testing.T) {
	script := []error{transientErr(), transientErr(), transientErr(), transientErr()}
	blobs := &countingResolver{script: script}
	r := newTestResolver(t, blobs, WithMaxAttempts(3))

	_, err := r.Resolve(context.Background(), "img-1")
	require.Error(t, err)
	require.Equal(t, int64(3), blobs.count())
}

func TestResolveFailureIsNotCached(t *testing.T) {
	blobs := &countingResolver{script: []error{notFoundErr()}}
	r := newTestResolver(t, blobs)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "img-1")
	require.Error(t, err)
	require.Zero(t, r.Cache().Len())

	// The next attempt goes back to the blob store and can succeed.
	url, err := r.Resolve(ctx, "img-1")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/img-1", url)
}

func TestClearCacheForcesReresolution(t *testing.T) {
	blobs := &countingResolver{}
	r := newTestResolver(t, blobs)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "img-1")
	require.NoError(t, err)
	r.ClearCache("img-1")
	_, err = r.Resolve(ctx, "img-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), blobs.count())
}

func TestPrefetchPopulatesCacheAndToleratesFailures(t *testing.T) {
	blobs := blobstore.ResolverFunc(func(_ context.Context, path string) (string, error) {
		if path == "img-bad" {
			return "", notFoundErr()
		}
		return "https://cdn.example.com/" + path, nil
	})
	r := newTestResolver(t, blobs)
	ctx := context.Background()

	ids := []string{"img-bad", "img-a", "img-b", "", "https://direct.example.com/c.png"}
	r.Prefetch(ctx, ids)
	require.NoError(t, r.AwaitPrefetch(ctx, "img-bad", "img-a", "img-b"))

	// One bad identifier never aborts the batch.
	require.Equal(t, 2, r.Cache().Len())
	_, ok := r.Cache().Get("img-a")
	require.True(t, ok)
	_, ok = r.Cache().Get("img-b")
	require.True(t, ok)
}

func TestLinearBackOffGrowsPerAttempt(t *testing.T) {
	l := &linearBackOff{step: time.Second}
	require.Equal(t, time.Second, l.NextBackOff())
	require.Equal(t, 2*time.Second, l.NextBackOff())
	require.Equal(t, 3*time.Second, l.NextBackOff())
	l.Reset()
	require.Equal(t, time.Second, l.NextBackOff())
}

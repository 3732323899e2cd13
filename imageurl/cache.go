package imageurl

import (
	"sync"
	"time"
)

// DefaultTTL is the fixed lifetime of a cached resolution.
const DefaultTTL = 30 * time.Minute

type entry struct {
	url       string
	createdAt time.Time
	expiresAt time.Time
}

// Cache maps image identifiers to resolved URLs with TTL expiry. It is an
// explicit injectable object, not module state, so independent instances
// can coexist (one per test, one per app). An entry observed after its
// expiry instant is treated as absent.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache returns an empty cache. A non-positive ttl takes DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached URL for key. Expired entries are evicted and
// reported absent.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.url, true
}

// Put stores url under key with expiry = now + TTL.
func (c *Cache) Put(key, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.entries[key] = entry{url: url, createdAt: now, expiresAt: now.Add(c.ttl)}
}

// Delete removes the entry for key, if any.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep removes all entries whose expiry has elapsed and returns the count
// removed. Safe to call at any time.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		cacheEvictionsTotal.Add(float64(removed))
	}
	return removed
}

// Len returns the number of entries, including any not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

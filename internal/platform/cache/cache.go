package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key-addressed read cache for query results backing the search
// and dashboard endpoints. It is an explicit object handed to its consumers
// rather than process-wide state, so tests can build their own instances.
// Concurrent loads for the same key are collapsed into one call.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	data      any
	fetchedAt time.Time
}

type Loader func(ctx context.Context) (any, error)

func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key, loading it through load when the
// entry is missing or older than the TTL.
func (c *Cache) Get(ctx context.Context, key string, load Loader) (any, error) {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		return cached.data, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have filled the entry while this one waited.
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
			return cached.data, nil
		}

		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = entry{data: data, fetchedAt: c.now()}
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Invalidate drops the entry for key, if any.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

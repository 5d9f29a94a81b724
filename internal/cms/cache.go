package cms

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Cache is a read-through TTL cache over a Provider. Content blocks change
// rarely and render on every storefront page, so a short TTL removes almost
// all database reads without an invalidation protocol.
//
// Expired entries are evicted lazily on access. Errors are never cached; a
// missing block is re-checked on every read so publishing takes effect within
// one TTL.
type Cache struct {
	inner Provider
	ttl   time.Duration

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry

	// now is swapped in tests to control expiry.
	now func() time.Time
}

type cacheKey struct {
	storeID pgtype.UUID
	slug    string
}

type cacheEntry struct {
	content   *Content
	expiresAt time.Time
}

// NewCache wraps a provider with a TTL cache.
func NewCache(inner Provider, ttl time.Duration) *Cache {
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
		now:     time.Now,
	}
}

// Compile-time check that Cache implements Provider.
var _ Provider = (*Cache)(nil)

// GetContent returns the cached block when fresh, otherwise reads through to
// the inner provider and caches the result.
func (c *Cache) GetContent(ctx context.Context, storeID pgtype.UUID, slug string) (*Content, error) {
	key := cacheKey{storeID: storeID, slug: slug}

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.content, nil
	}
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	content, err := c.inner.GetContent(ctx, storeID, slug)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{content: content, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return content, nil
}

// Invalidate drops the cached entry for a store and slug, if present.
// Editors call this after publishing so changes show up immediately.
func (c *Cache) Invalidate(storeID pgtype.UUID, slug string) {
	c.mu.Lock()
	delete(c.entries, cacheKey{storeID: storeID, slug: slug})
	c.mu.Unlock()
}

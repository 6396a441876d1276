// Package cache is the short-TTL read-through cache consulted before any
// metadata-store read. Concurrent misses for the same content id collapse
// into a single load via singleflight.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"postforge/models"
)

type entry struct {
	record    *models.ContentRecord
	expiresAt time.Time
}

type Loader func(ctx context.Context, contentID string) (*models.ContentRecord, error)

type ResultCache struct {
	mu    sync.RWMutex
	items map[string]entry
	gens  map[string]uint64
	ttl   time.Duration
	sf    singleflight.Group
	now   func() time.Time
}

func New(ttl time.Duration) *ResultCache {
	return &ResultCache{
		items: make(map[string]entry),
		gens:  make(map[string]uint64),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached record for contentID or falls through to loader
// and populates the cache. Load errors are not cached.
func (c *ResultCache) Get(ctx context.Context, contentID string, loader Loader) (*models.ContentRecord, error) {
	c.mu.RLock()
	e, ok := c.items[contentID]
	gen := c.gens[contentID]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expiresAt) {
		return e.record, nil
	}

	v, err, _ := c.sf.Do(contentID, func() (interface{}, error) {
		rec, err := loader(ctx, contentID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// An Invalidate that raced the load bumped the generation; the
		// loaded record must not repopulate the cache in that case.
		if c.gens[contentID] == gen {
			c.items[contentID] = entry{record: rec, expiresAt: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ContentRecord), nil
}

// Invalidate drops the entry for contentID. Called immediately on delete.
func (c *ResultCache) Invalidate(contentID string) {
	c.mu.Lock()
	delete(c.items, contentID)
	c.gens[contentID]++
	c.mu.Unlock()
}

// SetNow overrides the clock for tests.
func (c *ResultCache) SetNow(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

package cache

import (
	"context"
	"sync"
	"time"
)

// TTLCache is an in-process cache with a fixed entry lifetime
type TTLCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	entries map[string]Entry[V]
}

// NewTTLCache creates an empty cache
func NewTTLCache[V any](ttl time.Duration) *TTLCache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry[V]),
	}
}

// WithClock replaces the time source, mostly for tests
func (c *TTLCache[V]) WithClock(now Clock) *TTLCache[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns a live entry. Expired entries are dropped on access.
func (c *TTLCache[V]) Get(ctx context.Context, key string) (Entry[V], bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Entry[V]{}, false, nil
	}
	if expired(entry.InsertedAt, c.now(), c.ttl) {
		delete(c.entries, key)
		return Entry[V]{}, false, nil
	}
	return entry, true, nil
}

// Put stores value, resetting its age
func (c *TTLCache[V]) Put(ctx context.Context, key string, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry[V]{Value: value, InsertedAt: c.now()}
	return nil
}

// Invalidate removes key if present
func (c *TTLCache[V]) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len reports the number of stored entries, including expired ones not yet
// evicted.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// normalizer is implemented by values whose JSON numbers need converting
// back to their stored types, such as graph nodes and edges
type normalizer interface {
	Normalize() error
}

// RedisCache stores JSON encoded entries in Redis. Entries carry their
// insertion time and Redis expires the key after the TTL.
type RedisCache[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    Clock
}

// NewRedisCache creates a cache whose keys live under prefix
func NewRedisCache[V any](client *redis.Client, prefix string, ttl time.Duration) *RedisCache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache[V]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for insertion stamps
func (c *RedisCache[V]) WithClock(now Clock) *RedisCache[V] {
	c.now = now
	return c
}

func (c *RedisCache[V]) makeKey(key string) string {
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// Get returns a live entry
func (c *RedisCache[V]) Get(ctx context.Context, key string) (Entry[V], bool, error) {
	data, err := c.client.Get(ctx, c.makeKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry[V]{}, false, nil
		}
		return Entry[V]{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry Entry[V]
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&entry); err != nil {
		return Entry[V]{}, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if n, ok := any(entry.Value).(normalizer); ok {
		if err := n.Normalize(); err != nil {
			return Entry[V]{}, false, fmt.Errorf("decode cache entry %s: %w", key, err)
		}
	}
	// the key TTL and the stamp can disagree when clocks drift
	if expired(entry.InsertedAt, c.now(), c.ttl) {
		return Entry[V]{}, false, nil
	}
	return entry, true, nil
}

// Put stores value with the cache TTL
func (c *RedisCache[V]) Put(ctx context.Context, key string, value V) error {
	data, err := json.Marshal(Entry[V]{Value: value, InsertedAt: c.now()})
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.makeKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate removes key if present
func (c *RedisCache[V]) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.makeKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

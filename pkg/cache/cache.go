// Package cache provides short-lived caches for detail records fetched by
// the explorer. Entries remember when they were inserted and are treated as
// absent once their TTL has elapsed.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is used when a cache is created with a non-positive TTL
const DefaultTTL = 5 * time.Minute

// Entry is a cached value and the time it was stored
type Entry[V any] struct {
	Value      V         `json:"value"`
	InsertedAt time.Time `json:"insertedAt"`
}

// Store is the capability every cache offers
type Store[V any] interface {
	Get(ctx context.Context, key string) (Entry[V], bool, error)
	Put(ctx context.Context, key string, value V) error
	Invalidate(ctx context.Context, key string) error
}

// Clock returns the current time
type Clock func() time.Time

func expired(insertedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(insertedAt) >= ttl
}

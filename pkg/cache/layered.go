package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache reads through a fast local cache into a shared remote one.
// Writes go to both; the remote layer is best-effort.
type LayeredCache struct {
	l1 Service
	l2 Service
}

// NewLayeredCache composes an L1 (memory) and L2 (redis) cache.
func NewLayeredCache(l1, l2 Service) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2}
}

func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if b, err := c.l1.Get(ctx, key); err == nil {
		return b, nil
	}

	b, err := c.l2.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	// Backfill L1. Callers that need strict freshness embed their own
	// timestamp in the value; the cache TTL is a second line of defense.
	_ = c.l1.Set(ctx, key, b, 0)
	return b, nil
}

func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = c.l2.Set(ctx, key, value, ttl)
	return nil
}

func (c *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	err := c.l1.Delete(ctx, keys...)
	if e2 := c.l2.Delete(ctx, keys...); err == nil {
		err = e2
	}
	return err
}

func (c *LayeredCache) Len(ctx context.Context) int {
	return c.l1.Len(ctx)
}

func (c *LayeredCache) Purge(ctx context.Context) int {
	n := c.l1.Purge(ctx)
	n += c.l2.Purge(ctx)
	return n
}

func (c *LayeredCache) Close() error {
	err := c.l1.Close()
	if e2 := c.l2.Close(); err == nil {
		err = e2
	}
	return err
}

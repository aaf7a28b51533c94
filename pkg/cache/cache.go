package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines byte-oriented cache operations. Values are opaque blobs;
// callers own serialization.
type Service interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Len reports the number of live entries.
	Len(ctx context.Context) int
	// Purge removes expired entries and reports how many were dropped.
	Purge(ctx context.Context) int
	Close() error
}

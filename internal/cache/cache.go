// Package cache backs the popularity endpoints with a TTL key/value store.
// Redis is used when REDIS_URL is configured; otherwise an in-process store
// keeps single-node deployments dependency free.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)

	// Increment bumps a persistent counter and returns the new value.
	Increment(ctx context.Context, key string, delta int64) (int64, error)
}

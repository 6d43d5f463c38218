package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache wraps go-cache for TTL entries and keeps counters in a
// separate non-expiring map so an Increment never loses its running total.
type MemoryCache struct {
	values *gocache.Cache

	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		values:   gocache.New(gocache.NoExpiration, 10*time.Minute),
		counters: make(map[string]int64),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.values.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.values.Set(key, value, ttl)
}

func (m *MemoryCache) Delete(_ context.Context, key string) {
	m.values.Delete(key)
}

func (m *MemoryCache) Increment(_ context.Context, key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key] += delta
	return m.counters[key], nil
}

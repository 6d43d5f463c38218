package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RedisCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisCache connects to the given Redis URL and pings it once so a bad
// URL fails at startup rather than on the first request.
func NewRedisCache(ctx context.Context, url string, log zerolog.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisCache{client: client, log: log}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		return nil, false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

func (r *RedisCache) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("redis del failed")
	}
}

func (r *RedisCache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	return r.client.IncrBy(ctx, key, delta).Result()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV adapts a redis client to the byte-valued cache the services layer
// expects. Failures on either side stay inside this type: a read error is a
// miss, a write error is logged and dropped.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV wraps the given client; pass GetRedis() in production.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get returns the cached bytes for key, reporting a miss on any error.
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool) {
	if r.client == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if Sugar != nil {
			Sugar.Debugf("cache get miss key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

// Set stores bytes best-effort with the given TTL.
func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if r.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		if Sugar != nil {
			Sugar.Warnf("cache set failed key=%s err=%v", key, err)
		}
	}
}

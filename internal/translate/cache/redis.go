package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces translation keys in a shared Redis.
const DefaultKeyPrefix = "polychat:tr:"

// Redis is a cache shared between relay processes. Expiry is delegated to
// Redis key TTLs so stale entries are never returned.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis connects to the Redis instance at url and verifies it with PING.
func NewRedis(ctx context.Context, url string, ttl time.Duration, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisFromClient(client, ttl, prefix), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, ttl time.Duration, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{client: client, ttl: ttl, prefix: prefix}
}

// Get returns a cached value. Redis errors are reported as misses.
func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		// redis.Nil is the plain miss
		return "", false
	}
	return val, true
}

// Set stores value with the configured TTL.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Cache = (*Redis)(nil)

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache backed by a Redis instance. Values are serialized
// with the configured Marshaler, JSON by default.
type Redis[V any] struct {
	client    redis.UniversalClient
	marshaler Marshaler[V]
	prefix    string
	ttl       time.Duration
}

// RedisOption configures the Redis cache.
type RedisOption[V any] func(*Redis[V])

// WithPrefix namespaces all keys as "{prefix}:{key}" so multiple caches
// can share one Redis database.
func WithPrefix[V any](prefix string) RedisOption[V] {
	return func(r *Redis[V]) { r.prefix = prefix }
}

// WithRedisDefaultTTL sets the expiration applied when Set receives a
// zero TTL. Default: 1 hour.
func WithRedisDefaultTTL[V any](d time.Duration) RedisOption[V] {
	return func(r *Redis[V]) { r.ttl = d }
}

// WithMarshaler replaces the default JSON serializer.
func WithMarshaler[V any](m Marshaler[V]) RedisOption[V] {
	return func(r *Redis[V]) {
		if m != nil {
			r.marshaler = m
		}
	}
}

// NewRedis creates a Redis-backed cache on top of an existing client.
func NewRedis[V any](client redis.UniversalClient, opts ...RedisOption[V]) *Redis[V] {
	r := &Redis[V]{
		client:    client,
		marshaler: jsonMarshaler[V]{},
		ttl:       time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get retrieves a value by key.
// Returns ErrNotFound if the key does not exist.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	return r.marshaler.Unmarshal(data)
}

// Set stores a value with the interface's TTL semantics. Redis treats
// zero as no expiration, which covers the negative-TTL case.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	if ttl == 0 {
		ttl = r.ttl
	}
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

// Delete removes a key.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Has checks whether a key exists.
func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes all entries under the configured prefix using SCAN,
// which does not block the server. Without a prefix it flushes the
// whole database.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	pattern := r.prefix + ":*"
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op; the client lifecycle belongs to the caller.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

var _ Cache[any] = (*Redis[any])(nil)

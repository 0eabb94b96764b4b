package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a small read-through cache on top of Redis. Concurrent loads for
// the same key are collapsed through singleflight.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

// New wraps an existing Redis client.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// GetOrLoad returns the cached bytes for key, invoking load on a miss and
// storing the result under ttl. Redis failures degrade to a direct load.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil || c.rdb == nil {
		return load(ctx)
	}
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.rdb.Set(ctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// GetOrLoadJSON caches a JSON-marshaled value under key.
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (*T, error)) (*T, error) {
	if c == nil {
		return load(ctx)
	}
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Package cache is a thin JSON read-through layer over redis used for
// catalog listings. The whole layer is optional: a nil *Cache disables it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"avtosalon/config"
)

type Cache struct {
	db *redis.Client
}

func New(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	db := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache ping: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get unmarshals the cached value into result and reports whether the key
// was present.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	val, err := c.db.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.db.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.db.Del(ctx, keys...).Err()
}

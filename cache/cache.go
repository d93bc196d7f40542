// Package cache is a thin JSON result cache over Redis for the analytics
// endpoints. Entries carry a short TTL; fleet mutations invalidate the whole
// analytics namespace since any transition can shift every aggregate.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleet-charging/config"

	"github.com/go-redis/redis/v8"
)

const analyticsPrefix = "analytics:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(cfg *config.Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client: rdb,
		ttl:    cfg.CacheTTL,
	}, nil
}

// GetJSON reads a cached value into dest. The second return is false on a
// miss; a malformed entry is treated as a miss so a bad write never wedges an
// endpoint.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, analyticsPrefix+key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON stores a value under the analytics namespace with the configured
// TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := c.client.Set(ctx, analyticsPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// InvalidateAnalytics drops every cached analytics result. Called after any
// fleet state transition.
func (c *Cache) InvalidateAnalytics(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, analyticsPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

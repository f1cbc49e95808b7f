package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
)

const scanBatchSize = 100

// RedisCache stores entries in Redis so that every API instance shares them.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps client. Entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		if delErr := c.Delete(ctx, key); delErr != nil {
			return false, errors.Join(errDecode(key, err), delErr)
		}
		return false, errDecode(key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: failed to encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: failed to delete %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) DeleteOrganization(ctx context.Context, baseKey, organizationID string) error {
	pattern := tenancy.OrganizationCachePattern(baseKey, organizationID)
	iter := c.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()

	var keys []string
	for iter.Next(ctx) {
		// SCAN's glob also matches keys whose user segment contains ':'.
		if organizationKeyMatches(iter.Val(), baseKey, organizationID) {
			keys = append(keys, iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: failed to scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: failed to delete keys for %s: %w", pattern, err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is a process-local LRU cache with a fixed TTL.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache returns a MemoryCache holding at most size entries for ttl each.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := c.lru.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		_ = c.Delete(ctx, key)
		return false, errDecode(key, err)
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: failed to encode %s: %w", key, err)
	}
	c.lru.Add(key, raw)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

func (c *MemoryCache) DeleteOrganization(_ context.Context, baseKey, organizationID string) error {
	for _, key := range c.lru.Keys() {
		if organizationKeyMatches(key, baseKey, organizationID) {
			c.lru.Remove(key)
		}
	}
	return nil
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

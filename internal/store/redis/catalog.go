package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Cache holds the active catalog snapshot in Redis so status and refresh
// calls do not hit the database for every read. Always optional: the
// sqlite store stays the source of truth.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a snapshot cache with the given TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetActiveSnapshot returns the cached active snapshot, or (nil, nil) on
// a cache miss.
func (c *Cache) GetActiveSnapshot(ctx context.Context) (*domain.CatalogSnapshot, error) {
	data, err := c.client.Get(ctx, KeyActiveSnapshot).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached snapshot: %w", err)
	}

	var snap domain.CatalogSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	return &snap, nil
}

// SetActiveSnapshot replaces the cached active snapshot.
func (c *Cache) SetActiveSnapshot(ctx context.Context, snap *domain.CatalogSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, KeyActiveSnapshot, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, KeyActiveSnapshot).Err(); err != nil {
		return fmt.Errorf("failed to invalidate snapshot cache: %w", err)
	}
	return nil
}

// Ping reports whether the cache backend is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

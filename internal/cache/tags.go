// Package cache keeps read-mostly reference data in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const tagListKey = "foodgram:tags:all"

// TagCache stores the full tag list under a single key.
type TagCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTagCache(client *redis.Client, ttl time.Duration) *TagCache {
	return &TagCache{client: client, ttl: ttl}
}

// Get returns the cached list and whether it was present.
func (c *TagCache) Get(ctx context.Context) ([]models.Tag, bool, error) {
	raw, err := c.client.Get(ctx, tagListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read tag cache: %w", err)
	}
	var tags []models.Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, false, fmt.Errorf("failed to decode tag cache: %w", err)
	}
	return tags, true, nil
}

func (c *TagCache) Set(ctx context.Context, tags []models.Tag) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tagListKey, raw, c.ttl).Err()
}

func (c *TagCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, tagListKey).Err()
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LinkCache maps public share slugs to form IDs
type LinkCache interface {
	SetFormID(ctx context.Context, slug, formID string) error
	GetFormID(ctx context.Context, slug string) (string, error)
	Delete(ctx context.Context, slug string) error
}

type linkCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLinkCache creates a new share link cache
func NewLinkCache(client *redis.Client) LinkCache {
	return &linkCache{
		client: client,
		ttl:    24 * time.Hour, // Links are re-resolved from Mongo after 24h
	}
}

func (c *linkCache) key(slug string) string {
	return fmt.Sprintf("link:%s", slug)
}

func (c *linkCache) SetFormID(ctx context.Context, slug, formID string) error {
	return c.client.Set(ctx, c.key(slug), formID, c.ttl).Err()
}

// GetFormID returns "" when the slug isn't cached
func (c *linkCache) GetFormID(ctx context.Context, slug string) (string, error) {
	id, err := c.client.Get(ctx, c.key(slug)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *linkCache) Delete(ctx context.Context, slug string) error {
	return c.client.Del(ctx, c.key(slug)).Err()
}

package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChartCache stores rendered chart payloads per form. A payload is only valid
// for the response count it was computed from.
type ChartCache interface {
	Get(ctx context.Context, formID string, responseCount int64) ([]byte, error)
	Set(ctx context.Context, formID string, responseCount int64, payload []byte) error
	Invalidate(ctx context.Context, formID string) error
}

type chartCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewChartCache creates a new chart cache
func NewChartCache(client *redis.Client, ttl time.Duration) ChartCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &chartCache{
		client: client,
		ttl:    ttl,
	}
}

// Key helpers
func (c *chartCache) key(formID string) string {
	return fmt.Sprintf("form:%s:charts", formID)
}

func (c *chartCache) field(responseCount int64) string {
	return strconv.FormatInt(responseCount, 10)
}

func (c *chartCache) Get(ctx context.Context, formID string, responseCount int64) ([]byte, error) {
	data, err := c.client.HGet(ctx, c.key(formID), c.field(responseCount)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set replaces whatever was cached for the form with this payload
func (c *chartCache) Set(ctx context.Context, formID string, responseCount int64, payload []byte) error {
	key := c.key(formID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, c.field(responseCount), payload)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	return err
}

func (c *chartCache) Invalidate(ctx context.Context, formID string) error {
	return c.client.Del(ctx, c.key(formID)).Err()
}

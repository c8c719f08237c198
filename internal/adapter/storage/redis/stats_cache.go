package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// StatsCache implements ports.StatsCache using Redis. Cached payloads are
// the fully rendered dashboard JSON, keyed per teacher.
type StatsCache struct {
	client *goredis.Client
	prefix string
}

// NewStatsCache creates a new Redis-backed stats cache.
func NewStatsCache(client *goredis.Client) *StatsCache {
	return &StatsCache{
		client: client,
		prefix: "stats:teacher:",
	}
}

// Get retrieves a cached dashboard payload.
// Returns nil, nil if the key does not exist.
func (c *StatsCache) Get(ctx context.Context, teacherID uuid.UUID) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+teacherID.String()).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis stats get: %w", err)
	}
	return val, nil
}

// Set stores a dashboard payload with TTL.
func (c *StatsCache) Set(ctx context.Context, teacherID uuid.UUID, payload []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+teacherID.String(), payload, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis stats set: %w", err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baxromumarov/job-feed/internal/model"
)

const redisKeyPrefix = "jobfeed:jobs:"

// RedisCache keeps responses in Redis with a per-key expiry. Redis enforces
// the TTL, so Evict has nothing to do.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (model.JobsResponse, bool) {
	raw, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "error", err)
		}
		return model.JobsResponse{}, false
	}

	var resp model.JobsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Warn("cache entry decode failed", "error", err)
		return model.JobsResponse{}, false
	}
	if resp.Jobs == nil {
		resp.Jobs = []model.Job{}
	}
	return resp, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value model.JobsResponse) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache entry encode failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
}

func (c *RedisCache) Evict(context.Context) int { return 0 }

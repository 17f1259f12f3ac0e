// Package cache keeps short lived copies of aggregated dashboards in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "helpdesk:dashboard:"

// DashboardCache is safe to use as a nil pointer, in which case every lookup
// misses and writes are dropped.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardCache returns nil when there is no client or caching is disabled.
func NewDashboardCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *DashboardCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &DashboardCache{client: client, ttl: ttl, logger: logger}
}

// Get decodes the cached value for key into dest and reports a hit.
// Redis failures are logged and treated as misses.
func (c *DashboardCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("dashboard cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores value under key for the configured TTL.
func (c *DashboardCache) Set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("dashboard cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateAll drops every cached dashboard.
func (c *DashboardCache) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("dashboard cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}

// Package cache provides an optional Redis read cache for the daily
// schedule grid. Reads tolerate eventual consistency; every booking
// mutation invalidates the affected date.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScheduleCache caches serialized daily grids by date.
type ScheduleCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewScheduleCache returns a cache over the given client. A nil client
// or non-positive ttl yields a disabled cache whose methods are no-ops.
func NewScheduleCache(client *redis.Client, ttl time.Duration) *ScheduleCache {
	return &ScheduleCache{redis: client, ttl: ttl}
}

func (c *ScheduleCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

func key(date string) string {
	return fmt.Sprintf("schedule:%s", date)
}

// Get unmarshals the cached grid for date into out. Returns false on
// miss, disabled cache or stale payload.
func (c *ScheduleCache) Get(ctx context.Context, date string, out any) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.redis.Get(ctx, key(date)).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

// Set stores the grid for date. Failures are swallowed: the cache is
// an optimization, never a source of truth.
func (c *ScheduleCache) Set(ctx context.Context, date string, val any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key(date), data, c.ttl).Err()
}

// Invalidate drops the cached grid for date.
func (c *ScheduleCache) Invalidate(ctx context.Context, date string) {
	if !c.enabled() {
		return
	}
	_ = c.redis.Del(ctx, key(date)).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parkproof/pkg/model"

	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "parkproof:lot-stats:"

// StatsCache holds recently computed lot statistics. A miss returns
// (nil, nil); callers recompute on any error too.
type StatsCache interface {
	Get(ctx context.Context, lotID string) (*model.LotStats, error)
	Set(ctx context.Context, stats *model.LotStats) error
	Invalidate(ctx context.Context, lotID string) error
}

type redisStatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatsCache returns a Redis backed cache, or a no-op cache when rdb is nil.
func NewStatsCache(rdb *redis.Client, ttl time.Duration) StatsCache {
	if rdb == nil {
		return NoopStatsCache{}
	}
	return &redisStatsCache{rdb: rdb, ttl: ttl}
}

func StatsKey(lotID string) string {
	return statsKeyPrefix + lotID
}

func (c *redisStatsCache) Get(ctx context.Context, lotID string) (*model.LotStats, error) {
	raw, err := c.rdb.Get(ctx, StatsKey(lotID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached stats: %w", err)
	}

	var stats model.LotStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode cached stats: %w", err)
	}
	return &stats, nil
}

func (c *redisStatsCache) Set(ctx context.Context, stats *model.LotStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := c.rdb.Set(ctx, StatsKey(stats.ParkingLotID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache stats: %w", err)
	}
	return nil
}

func (c *redisStatsCache) Invalidate(ctx context.Context, lotID string) error {
	if err := c.rdb.Del(ctx, StatsKey(lotID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats: %w", err)
	}
	return nil
}

type NoopStatsCache struct{}

func (NoopStatsCache) Get(context.Context, string) (*model.LotStats, error) { return nil, nil }
func (NoopStatsCache) Set(context.Context, *model.LotStats) error            { return nil }
func (NoopStatsCache) Invalidate(context.Context, string) error              { return nil }

package runner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mtc-analytics/patlens/pkg/common"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/redis/go-redis/v9"
)

// RedisCache shares cached results between gateway replicas. Entries are
// JSON-encoded under patlens:result:<fingerprint> with a TTL.
type RedisCache struct {
	rdb *common.RedisClient
	ttl time.Duration
}

// NewRedisCache creates a redis-backed result cache.
func NewRedisCache(rdb *common.RedisClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*types.CachedResult, bool, error) {
	data, err := c.rdb.Get(ctx, common.Keys.ResultEntry(fingerprint)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry types.CachedResult
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}

func (c *RedisCache) Set(ctx context.Context, fingerprint string, result *types.CachedResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, common.Keys.ResultEntry(fingerprint), data, c.ttl).Err()
}

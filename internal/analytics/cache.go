package analytics

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ReportCache stores computed reports keyed by dataset and filter.
// Implementations fail open: a cache error is a miss, never a compute
// failure.
type ReportCache interface {
	Get(ctx context.Context, datasetID, filterKey string) (*Report, bool)
	Put(ctx context.Context, datasetID, filterKey string, report *Report)
	Invalidate(ctx context.Context, datasetID string)
}

// ===========================================
// IN-MEMORY CACHE
// ===========================================

// InMemoryReportCache is the default cache when Redis is not
// configured.
type InMemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]*Report
}

func NewInMemoryReportCache() *InMemoryReportCache {
	return &InMemoryReportCache{entries: make(map[string]*Report)}
}

func cacheKey(datasetID, filterKey string) string {
	return datasetID + "\x00" + filterKey
}

func (c *InMemoryReportCache) Get(_ context.Context, datasetID, filterKey string) (*Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rep, ok := c.entries[cacheKey(datasetID, filterKey)]
	return rep, ok
}

func (c *InMemoryReportCache) Put(_ context.Context, datasetID, filterKey string, report *Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(datasetID, filterKey)] = report
}

func (c *InMemoryReportCache) Invalidate(_ context.Context, datasetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := datasetID + "\x00"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// ===========================================
// REDIS CACHE
// ===========================================

// RedisReportCache shares computed reports across instances.  Reports
// are stored as JSON with a TTL; dataset regeneration invalidates by
// key prefix.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisReportCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisReportCache) redisKey(datasetID, filterKey string) string {
	return "pulse:report:" + datasetID + ":" + filterKey
}

func (c *RedisReportCache) Get(ctx context.Context, datasetID, filterKey string) (*Report, bool) {
	data, err := c.client.Get(ctx, c.redisKey(datasetID, filterKey)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("report cache get failed", zap.Error(err))
		return nil, false
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		c.logger.Warn("report cache decode failed", zap.Error(err))
		return nil, false
	}
	return &rep, true
}

func (c *RedisReportCache) Put(ctx context.Context, datasetID, filterKey string, report *Report) {
	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("report cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.redisKey(datasetID, filterKey), data, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache set failed", zap.Error(err))
	}
}

func (c *RedisReportCache) Invalidate(ctx context.Context, datasetID string) {
	pattern := "pulse:report:" + datasetID + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("report cache scan failed", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("report cache invalidate failed", zap.Error(err))
		}
	}
}

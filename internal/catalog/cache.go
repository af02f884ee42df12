package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/pkg/model"
)

const cacheKeyPrefix = "catalog:tokens:"

// Cache stores the built token catalog in Redis so listing endpoints never
// wait on a full rebuild.
type Cache struct {
	logger *zap.Logger
	rdb    *redis.Client
	ttl    time.Duration
}

// NewCache creates a catalog cache with the given TTL.
func NewCache(logger *zap.Logger, rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		logger: logger,
		rdb:    rdb,
		ttl:    ttl,
	}
}

// Put stores the catalog for a chain.
func (c *Cache) Put(ctx context.Context, chainID string, records []model.TokenRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+chainID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache catalog: %w", err)
	}
	return nil
}

// Get returns the cached catalog for a chain; ok is false on a miss.
func (c *Cache) Get(ctx context.Context, chainID string) ([]model.TokenRecord, bool, error) {
	data, err := c.rdb.Get(ctx, cacheKeyPrefix+chainID).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read catalog cache: %w", err)
	}

	var records []model.TokenRecord
	if err := json.Unmarshal(data, &records); err != nil {
		// A corrupt entry is treated as a miss so the next refresh heals it.
		c.logger.Warn("catalog.cache_corrupt", zap.Error(err), zap.String("chain_id", chainID))
		return nil, false, nil
	}
	return records, true, nil
}

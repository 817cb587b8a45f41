// internal/service/warranty/infrastructure/redis_cache.go
package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"veritag/internal/pkg/logger"
	"veritag/internal/pkg/redis"
	"veritag/internal/service/warranty/domain"
)

const (
	batchSummaryKey = "veritag:batches"
	batchSummaryTTL = 5 * time.Minute
)

// RedisBatchSummaryCache 把批次聚合视图物化到 Redis。
// 缓存永远只是数据库聚合的影子：读不到或读坏了都当作未命中，
// 回源重算，绝不让缓存故障变成接口故障。
type RedisBatchSummaryCache struct {
	client *redis.Client
}

func NewRedisBatchSummaryCache(client *redis.Client) *RedisBatchSummaryCache {
	return &RedisBatchSummaryCache{client: client}
}

func (c *RedisBatchSummaryCache) Get(ctx context.Context) ([]domain.BatchSummary, bool, error) {
	data, err := c.client.GetBytes(ctx, batchSummaryKey)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("读取批次缓存失败，回源数据库")
		return nil, false, nil
	}
	if data == nil {
		return nil, false, nil
	}

	var batches []domain.BatchSummary
	if err := json.Unmarshal(data, &batches); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("批次缓存内容损坏，按未命中处理")
		return nil, false, nil
	}
	return batches, true, nil
}

func (c *RedisBatchSummaryCache) Set(ctx context.Context, batches []domain.BatchSummary) error {
	data, err := json.Marshal(batches)
	if err != nil {
		return err
	}
	return c.client.SetBytes(ctx, batchSummaryKey, data, batchSummaryTTL)
}

func (c *RedisBatchSummaryCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, batchSummaryKey)
}

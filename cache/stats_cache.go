package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnkhanh/survey-collector/services"
)

// DefaultStatsTTL: snapshot thống kê sống tối đa 60s nếu không bị xoá sớm.
const DefaultStatsTTL = 60 * time.Second

// statsCache lưu []services.QuestionStats dạng JSON trong redis.
type statsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache trả về services.StatsCache dùng redis.
func NewStatsCache(client *redis.Client, ttl time.Duration) services.StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &statsCache{client: client, ttl: ttl}
}

func statsKey(surveyID uint) string {
	return fmt.Sprintf("survey:%d:stats", surveyID)
}

func (c *statsCache) Get(ctx context.Context, surveyID uint) ([]services.QuestionStats, error) {
	data, err := c.client.Get(ctx, statsKey(surveyID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	stats := []services.QuestionStats{}
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *statsCache) Set(ctx context.Context, surveyID uint, stats []services.QuestionStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(surveyID), data, c.ttl).Err()
}

func (c *statsCache) Invalidate(ctx context.Context, surveyID uint) error {
	return c.client.Del(ctx, statsKey(surveyID)).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freshdepot/backend-go/internal/config"
	"github.com/freshdepot/backend-go/internal/domain"
)

const (
	planningViewsKey   = "planning:views"
	planningSummaryKey = "planning:summary"
)

// PlanningCache holds the derived planning payloads between snapshot
// changes. A recompute invalidates everything.
type PlanningCache interface {
	GetViews(ctx context.Context) ([]domain.PlanningView, bool, error)
	SetViews(ctx context.Context, views []domain.PlanningView) error
	GetSummary(ctx context.Context) (*domain.PlanningSummary, bool, error)
	SetSummary(ctx context.Context, summary domain.PlanningSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisPlanningCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPlanningCache struct{}

func NewPlanningCache(cfg config.CacheConfig) (PlanningCache, error) {
	if !cfg.Enabled {
		return &noopPlanningCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPlanningCache{client: client, ttl: ttl}, nil
}

func NewNoopPlanningCache() PlanningCache {
	return &noopPlanningCache{}
}

func (c *redisPlanningCache) GetViews(ctx context.Context) ([]domain.PlanningView, bool, error) {
	payload, err := c.client.Get(ctx, planningViewsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var views []domain.PlanningView
	if err := json.Unmarshal(payload, &views); err != nil {
		return nil, false, fmt.Errorf("decode planning views cache: %w", err)
	}

	return views, true, nil
}

func (c *redisPlanningCache) SetViews(ctx context.Context, views []domain.PlanningView) error {
	payload, err := json.Marshal(views)
	if err != nil {
		return fmt.Errorf("encode planning views cache: %w", err)
	}

	if err := c.client.Set(ctx, planningViewsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPlanningCache) GetSummary(ctx context.Context) (*domain.PlanningSummary, bool, error) {
	payload, err := c.client.Get(ctx, planningSummaryKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.PlanningSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode planning summary cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisPlanningCache) SetSummary(ctx context.Context, summary domain.PlanningSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode planning summary cache: %w", err)
	}

	if err := c.client.Set(ctx, planningSummaryKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPlanningCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Del(ctx, planningViewsKey, planningSummaryKey).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (c *noopPlanningCache) GetViews(ctx context.Context) ([]domain.PlanningView, bool, error) {
	return nil, false, nil
}

func (c *noopPlanningCache) SetViews(ctx context.Context, views []domain.PlanningView) error {
	return nil
}

func (c *noopPlanningCache) GetSummary(ctx context.Context) (*domain.PlanningSummary, bool, error) {
	return nil, false, nil
}

func (c *noopPlanningCache) SetSummary(ctx context.Context, summary domain.PlanningSummary) error {
	return nil
}

func (c *noopPlanningCache) InvalidateAll(ctx context.Context) error {
	return nil
}

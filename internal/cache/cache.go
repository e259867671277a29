package cache

import (
	"context"
	"time"

	"tillpoint/backend/internal/domain"
)

type ReportCache interface {
	Get(ctx context.Context, key string) (*domain.DailyCountSummary, bool, error)
	Set(ctx context.Context, key string, value *domain.DailyCountSummary, ttl time.Duration) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (*domain.DailyCountSummary, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ *domain.DailyCountSummary, _ time.Duration) error {
	return nil
}

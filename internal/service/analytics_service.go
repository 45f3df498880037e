package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/internal/models"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

const (
	dashboardCacheKey     = "analytics:dashboard"
	analyticsCachePattern = "analytics:*"
)

// AnalyticsRepository describes the persistence layer required by AnalyticsService.
type AnalyticsRepository interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	StudentPerformance(ctx context.Context, domain string) ([]models.StudentPerformanceRow, error)
}

// AnalyticsService serves the admin dashboard through the Redis cache.
type AnalyticsService struct {
	repo    AnalyticsRepository
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Dashboard returns the dashboard counters. The boolean reports a cache hit.
// Process metrics are attached fresh on every call.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*models.DashboardStats, bool, error) {
	stats, hit, err := cacheAside(ctx, s.cache, dashboardCacheKey, s.ttl, func(ctx context.Context) (*models.DashboardStats, error) {
		stats, err := s.repo.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		stats.GeneratedAt = time.Now().UTC()
		return stats, nil
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}
	if stats.UsersByRole == nil {
		stats.UsersByRole = []models.LabelCount{}
	}
	if stats.TopDomains == nil {
		stats.TopDomains = []models.LabelCount{}
	}
	if stats.ApplicationsByStatus == nil {
		stats.ApplicationsByStatus = []models.LabelCount{}
	}
	stats.System = s.metrics.Snapshot()
	return stats, hit, nil
}

// Invalidate drops cached dashboard data.
func (s *AnalyticsService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, analyticsCachePattern); err != nil {
		s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

const cacheNamespace = "lesson-schedule"

// StatsCacheKey names the cached statistics of one schedule version.
func StatsCacheKey(scheduleID string) string {
	return fmt.Sprintf("%s:stats:%s", cacheNamespace, scheduleID)
}

// StatsCachePattern matches every cached statistics payload.
func StatsCachePattern() string {
	return cacheNamespace + ":stats:*"
}

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService keeps computed schedule statistics in Redis. Cache failures never
// fail the caller; they are logged and counted as misses.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Stats returns the cached statistics of a schedule version, if present.
func (s *CacheService) Stats(ctx context.Context, scheduleID string) (*models.ScheduleStats, bool) {
	if !s.Enabled() {
		return nil, false
	}
	key := StatsCacheKey(scheduleID)
	start := time.Now()
	var stats models.ScheduleStats
	err := s.repo.Get(ctx, key, &stats)
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	}
	if err != nil {
		if !appErrors.HasCode(err, appErrors.ErrCacheMiss.Code) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return &stats, true
}

// StoreStats caches statistics for a schedule version.
func (s *CacheService) StoreStats(ctx context.Context, scheduleID string, stats models.ScheduleStats) {
	if !s.Enabled() {
		return
	}
	key := StatsCacheKey(scheduleID)
	start := time.Now()
	err := s.repo.Set(ctx, key, stats, s.ttl)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// DropStats removes the cached statistics of one schedule version.
func (s *CacheService) DropStats(ctx context.Context, scheduleID string) {
	s.invalidate(ctx, StatsCacheKey(scheduleID))
}

// InvalidateStats drops every cached statistics payload, used when the roster,
// constraints or coach preferences change.
func (s *CacheService) InvalidateStats(ctx context.Context) {
	s.invalidate(ctx, StatsCachePattern())
}

func (s *CacheService) invalidate(ctx context.Context, pattern string) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"jobportal_backend/internal/cache"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/telemetry"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const dashboardStatsKey = "admin:dashboard_stats"

// StatsService - счетчики для дашборда с кэшированием
type StatsService interface {
	GetDashboardStats(ctx context.Context, db *gorm.DB) (dto.DashboardStats, error)
	Invalidate(ctx context.Context)
}

type StatsServiceImpl struct {
	entityRepo repositories.EntityRepository
	cache      cache.Cache
	ttl        time.Duration
	timeout    time.Duration
	// generation растет при каждом Invalidate; подсчет, начатый до сброса, в кэш не пишется
	generation atomic.Uint64
}

func NewStatsService(entityRepo repositories.EntityRepository, c cache.Cache, ttl, timeout time.Duration) StatsService {
	return &StatsServiceImpl{
		entityRepo: entityRepo,
		cache:      c,
		ttl:        ttl,
		timeout:    timeout,
	}
}

func (s *StatsServiceImpl) GetDashboardStats(ctx context.Context, db *gorm.DB) (dto.DashboardStats, error) {
	var cached dto.DashboardStats
	found, err := s.cache.Get(ctx, dashboardStatsKey, &cached)
	if err != nil {
		logger.CtxWarn(ctx, "stats cache read failed", "error", err.Error())
	}
	if found {
		telemetry.StatsCacheHits.Inc()
		return cached, nil
	}

	generation := s.generation.Load()

	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	var mu sync.Mutex
	stats := make(dto.DashboardStats, len(models.AllKinds()))

	g, gctx := errgroup.WithContext(storeCtx)
	for _, kind := range models.AllKinds() {
		g.Go(func() error {
			total, byStatus, err := s.entityRepo.CountByStatus(db.WithContext(gctx), kind)
			if err != nil {
				return handleStoreError(kind, "", err)
			}
			mu.Lock()
			stats[kind.String()] = dto.KindStats{Total: total, ByStatus: byStatus}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.generation.Load() != generation {
		return stats, nil
	}
	if err := s.cache.Set(ctx, dashboardStatsKey, stats, s.ttl); err != nil {
		logger.CtxWarn(ctx, "stats cache write failed", "error", err.Error())
	}
	return stats, nil
}

// Invalidate сбрасывает кэш; ошибка кэша только логируется
func (s *StatsServiceImpl) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	if err := s.cache.Delete(ctx, dashboardStatsKey); err != nil {
		logger.CtxWarn(ctx, "stats cache invalidation failed", "error", err.Error())
	}
}

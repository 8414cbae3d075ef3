package services

import (
	"context"
	"strings"
	"sync"

	"jobportal_backend/internal/config"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/telemetry"
	"jobportal_backend/pkg/apperrors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// BulkActionService применяет один статус к набору id.
// Ошибка одного элемента не прерывает остальные.
type BulkActionService interface {
	ApplyStatus(ctx context.Context, db *gorm.DB, kind models.EntityKind, ids []string, status, reason, actorID string) (*dto.BulkActionResult, error)
}

type BulkActionServiceImpl struct {
	moderator *moderator
	stats     StatsService
	maxIDs    int
	workers   int
}

func NewBulkActionService(
	entityRepo repositories.EntityRepository,
	logRepo repositories.ModerationLogRepository,
	stats StatsService,
	notifier NotificationService,
	cfg config.AdminConfig,
) BulkActionService {
	workers := cfg.BulkWorkers
	if workers < 1 {
		workers = 1
	}
	return &BulkActionServiceImpl{
		moderator: newModerator(entityRepo, logRepo, notifier, cfg.StoreTimeout),
		stats:     stats,
		maxIDs:    cfg.MaxBulkIDs,
		workers:   workers,
	}
}

// ApplyStatus: каждый уникальный id попадает ровно в succeeded или failed.
// succeeded сохраняет порядок входного списка.
func (s *BulkActionServiceImpl) ApplyStatus(ctx context.Context, db *gorm.DB, kind models.EntityKind, ids []string, status, reason, actorID string) (*dto.BulkActionResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.ErrEmptyBulk
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, apperrors.ErrEmptyBulk
	}
	if s.maxIDs > 0 && len(ids) > s.maxIDs {
		return nil, apperrors.ErrBulkLimit(s.maxIDs)
	}
	if !kind.IsModerable() {
		return nil, apperrors.ErrUnsupportedOperation(kind.String(), "bulk status")
	}
	validStatus, err := models.ValidateStatus(kind, status)
	if err != nil {
		return nil, apperrors.ErrInvalidEntityStatus(kind.String(), status)
	}

	var (
		mu        sync.Mutex
		succeeded = make(map[string]bool, len(ids))
		failed    = make(map[string]string)
		changed   bool
	)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, id := range ids {
		g.Go(func() error {
			_, itemChanged, err := s.moderator.apply(ctx, db, kind, id, validStatus, reason, actorID, "bulk")

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[id] = bulkFailureReason(err)
				return nil
			}
			succeeded[id] = true
			changed = changed || itemChanged
			return nil
		})
	}
	_ = g.Wait()

	result := &dto.BulkActionResult{
		Succeeded: make([]string, 0, len(succeeded)),
		Failed:    failed,
	}
	for _, id := range ids {
		if succeeded[id] {
			result.Succeeded = append(result.Succeeded, id)
		}
	}

	telemetry.BulkItems.WithLabelValues("succeeded").Add(float64(len(result.Succeeded)))
	telemetry.BulkItems.WithLabelValues("failed").Add(float64(len(result.Failed)))

	if changed {
		s.stats.Invalidate(ctx)
	}

	logger.CtxInfo(ctx, "bulk status applied",
		"kind", kind,
		"status", validStatus,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result, nil
}

// uniqueIDs убирает пустые и повторяющиеся id, сохраняя порядок
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

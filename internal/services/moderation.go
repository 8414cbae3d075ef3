package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/telemetry"
	"jobportal_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// moderator применяет изменение статуса одной сущности и выполняет побочные действия:
// запись в журнал, метрику и уведомление. Кэш статистики сбрасывают вызывающие.
type moderator struct {
	entityRepo repositories.EntityRepository
	logRepo    repositories.ModerationLogRepository
	notifier   NotificationService
	timeout    time.Duration
}

func newModerator(
	entityRepo repositories.EntityRepository,
	logRepo repositories.ModerationLogRepository,
	notifier NotificationService,
	timeout time.Duration,
) *moderator {
	return &moderator{
		entityRepo: entityRepo,
		logRepo:    logRepo,
		notifier:   notifier,
		timeout:    timeout,
	}
}

// apply возвращает сущность, флаг изменения и ошибку хранилища без перевода
func (m *moderator) apply(ctx context.Context, db *gorm.DB, kind models.EntityKind, id, status, reason, actorID, source string) (models.Entity, bool, error) {
	storeCtx, cancel := withStoreTimeout(ctx, m.timeout)
	defer cancel()

	entity, previous, err := m.entityRepo.UpdateStatus(db.WithContext(storeCtx), kind, id, status, reason)
	if err != nil {
		return nil, false, err
	}
	if previous == status {
		return entity, false, nil
	}

	change := dto.StatusChange{
		Kind:    kind,
		Entity:  entity,
		From:    previous,
		To:      status,
		Reason:  reason,
		ActorID: actorID,
	}

	m.record(ctx, db, change, source)
	telemetry.StatusChanges.WithLabelValues(string(kind), status).Inc()
	if m.notifier != nil {
		m.notifier.NotifyStatusChange(ctx, change)
	}
	return entity, true, nil
}

// record пишет журнал; ошибка журнала не откатывает изменение статуса
func (m *moderator) record(ctx context.Context, db *gorm.DB, change dto.StatusChange, source string) {
	entry := &models.ModerationLog{
		EntityKind: change.Kind,
		EntityID:   change.Entity.GetID(),
		FromStatus: change.From,
		ToStatus:   change.To,
		Reason:     change.Reason,
		ActorID:    change.ActorID,
		Details:    logDetails(ctx, source),
	}

	storeCtx, cancel := withStoreTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.logRepo.Create(db.WithContext(storeCtx), entry); err != nil {
		logger.CtxWithError(ctx, "failed to write moderation log", err,
			"kind", change.Kind,
			"entity_id", change.Entity.GetID(),
		)
	}
}

func logDetails(ctx context.Context, source string) datatypes.JSON {
	details := map[string]string{"source": source}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		details["requestId"] = requestID
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// handleStoreError переводит ошибки репозитория в ошибки API
func handleStoreError(kind models.EntityKind, id string, err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repositories.ErrEntityNotFound), errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrEntityNotFound(kind.String(), id)
	case errors.Is(err, repositories.ErrDuplicateEntity):
		return apperrors.ErrDuplicate(kind.String(), "unique field")
	case errors.Is(err, repositories.ErrUnsupportedFilter):
		return apperrors.NewBadRequestError(err.Error())
	case errors.Is(err, repositories.ErrUnsupportedOperation):
		return apperrors.ErrUnsupportedOperation(kind.String(), "requested")
	case errors.Is(err, repositories.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return apperrors.ErrStoreUnavailable(err)
	default:
		return apperrors.InternalError(err)
	}
}

// bulkFailureReason - короткая причина для поля failed пакетного ответа
func bulkFailureReason(err error) string {
	switch {
	case errors.Is(err, repositories.ErrEntityNotFound):
		return "not found"
	case errors.Is(err, repositories.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return "store unavailable"
	default:
		return err.Error()
	}
}

package services

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// AdminService - запросы и изменения админ-панели для всех видов сущностей
type AdminService interface {
	ListEntities(ctx context.Context, db *gorm.DB, kind models.EntityKind, query dto.ListQuery) (*dto.Page[models.Entity], error)
	GetEntity(ctx context.Context, db *gorm.DB, kind models.EntityKind, id string) (models.Entity, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, kind models.EntityKind, id string, req *dto.UpdateStatusRequest, actorID string) (models.Entity, error)
	DeleteEntity(ctx context.Context, db *gorm.DB, kind models.EntityKind, id, actorID string) error

	CreateUser(ctx context.Context, db *gorm.DB, req *dto.CreateUserRequest) (*models.User, error)
	CreateSkill(ctx context.Context, db *gorm.DB, req *dto.CreateSkillRequest) (*models.Skill, error)
	CreateCategory(ctx context.Context, db *gorm.DB, req *dto.CreateCategoryRequest) (*models.JobCategory, error)

	ListModerationLogs(ctx context.Context, db *gorm.DB, query dto.ModerationLogQuery) (*dto.Page[models.ModerationLog], error)
}

type AdminServiceImpl struct {
	entityRepo repositories.EntityRepository
	logRepo    repositories.ModerationLogRepository
	stats      StatsService
	moderator  *moderator
	cfg        config.AdminConfig
}

func NewAdminService(
	entityRepo repositories.EntityRepository,
	logRepo repositories.ModerationLogRepository,
	stats StatsService,
	notifier NotificationService,
	cfg config.AdminConfig,
) AdminService {
	return &AdminServiceImpl{
		entityRepo: entityRepo,
		logRepo:    logRepo,
		stats:      stats,
		moderator:  newModerator(entityRepo, logRepo, notifier, cfg.StoreTimeout),
		cfg:        cfg,
	}
}

// ListEntities - страница сущностей вида; page и limit приводятся к допустимым границам
func (s *AdminServiceImpl) ListEntities(ctx context.Context, db *gorm.DB, kind models.EntityKind, query dto.ListQuery) (*dto.Page[models.Entity], error) {
	page, limit := normalizePage(query.Page, query.Limit, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)

	criteria, err := buildCriteria(kind, query)
	if err != nil {
		return nil, err
	}
	criteria.Offset = pageOffset(page, limit)
	criteria.Limit = limit

	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	rows, total, err := s.entityRepo.FindPage(db.WithContext(storeCtx), kind, criteria)
	if err != nil {
		return nil, handleStoreError(kind, "", err)
	}

	result := dto.NewPage(rows, total, page, limit)
	return &result, nil
}

func (s *AdminServiceImpl) GetEntity(ctx context.Context, db *gorm.DB, kind models.EntityKind, id string) (models.Entity, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	entity, err := s.entityRepo.FindByID(db.WithContext(storeCtx), kind, id)
	if err != nil {
		return nil, handleStoreError(kind, id, err)
	}
	return entity, nil
}

// UpdateStatus проверяет статус до обращения к хранилищу.
// Повторная установка того же статуса ничего не пишет в журнал.
func (s *AdminServiceImpl) UpdateStatus(ctx context.Context, db *gorm.DB, kind models.EntityKind, id string, req *dto.UpdateStatusRequest, actorID string) (models.Entity, error) {
	if !kind.IsModerable() {
		return nil, apperrors.ErrUnsupportedOperation(kind.String(), "status")
	}
	status, err := models.ValidateStatus(kind, req.Status)
	if err != nil {
		return nil, apperrors.ErrInvalidEntityStatus(kind.String(), req.Status)
	}

	entity, changed, err := s.moderator.apply(ctx, db, kind, id, status, req.Reason, actorID, "single")
	if err != nil {
		return nil, handleStoreError(kind, id, err)
	}

	if changed {
		s.stats.Invalidate(ctx)
		logger.CtxInfo(ctx, "entity status changed", "kind", kind, "entity_id", id, "status", status)
	}
	return entity, nil
}

// DeleteEntity удаляет мягко или физически в зависимости от вида
func (s *AdminServiceImpl) DeleteEntity(ctx context.Context, db *gorm.DB, kind models.EntityKind, id, actorID string) error {
	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	tx := db.WithContext(storeCtx)
	var err error
	switch kind.DeletePolicy() {
	case models.SoftDelete:
		err = s.entityRepo.SoftDelete(tx, kind, id)
	default:
		err = s.entityRepo.HardDelete(tx, kind, id)
	}
	if err != nil {
		return handleStoreError(kind, id, err)
	}

	entry := &models.ModerationLog{
		EntityKind: kind,
		EntityID:   id,
		ToStatus:   "deleted",
		ActorID:    actorID,
		Details:    logDetails(ctx, "delete:"+kind.DeletePolicy().String()),
	}
	if err := s.logRepo.Create(tx, entry); err != nil {
		logger.CtxWithError(ctx, "failed to write moderation log", err, "kind", kind, "entity_id", id)
	}

	s.stats.Invalidate(ctx)
	logger.CtxInfo(ctx, "entity deleted", "kind", kind, "entity_id", id, "policy", kind.DeletePolicy().String())
	return nil
}

// CreateUser - создание пользователя администратором, email уникален
func (s *AdminServiceImpl) CreateUser(ctx context.Context, db *gorm.DB, req *dto.CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	tx := db.WithContext(storeCtx)

	if err := s.ensureUnique(tx, models.KindUser, "email", email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}

	status := models.UserStatusActive
	if req.Status != "" {
		status = models.UserStatus(req.Status)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         models.UserRole(req.Role),
		Status:       status,
	}
	if err := s.entityRepo.Create(tx, models.KindUser, user); err != nil {
		return nil, s.createError(models.KindUser, "email", err)
	}

	s.stats.Invalidate(ctx)
	logger.CtxInfo(ctx, "user created by admin", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *AdminServiceImpl) CreateSkill(ctx context.Context, db *gorm.DB, req *dto.CreateSkillRequest) (*models.Skill, error) {
	name := strings.TrimSpace(req.Name)

	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	tx := db.WithContext(storeCtx)

	if err := s.ensureUnique(tx, models.KindSkill, "name", name); err != nil {
		return nil, err
	}

	skill := &models.Skill{Name: name}
	if err := s.entityRepo.Create(tx, models.KindSkill, skill); err != nil {
		return nil, s.createError(models.KindSkill, "name", err)
	}

	s.stats.Invalidate(ctx)
	return skill, nil
}

// CreateCategory - slug по умолчанию строится из имени
func (s *AdminServiceImpl) CreateCategory(ctx context.Context, db *gorm.DB, req *dto.CreateCategoryRequest) (*models.JobCategory, error) {
	name := strings.TrimSpace(req.Name)
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	if slug == "" {
		return nil, apperrors.ValidationError(map[string]string{"slug": "Cannot derive slug from name"})
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	tx := db.WithContext(storeCtx)

	if err := s.ensureUnique(tx, models.KindJobCategory, "name", name); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(tx, models.KindJobCategory, "slug", slug); err != nil {
		return nil, err
	}

	category := &models.JobCategory{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.entityRepo.Create(tx, models.KindJobCategory, category); err != nil {
		return nil, s.createError(models.KindJobCategory, "slug", err)
	}

	s.stats.Invalidate(ctx)
	return category, nil
}

func (s *AdminServiceImpl) ListModerationLogs(ctx context.Context, db *gorm.DB, query dto.ModerationLogQuery) (*dto.Page[models.ModerationLog], error) {
	page, limit := normalizePage(query.Page, query.Limit, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)

	filter := repositories.ModerationLogFilter{
		EntityID: strings.TrimSpace(query.EntityID),
		Offset:   pageOffset(page, limit),
		Limit:    limit,
	}
	if query.Kind != "" {
		kind, ok := models.ParseEntityKind(query.Kind)
		if !ok {
			return nil, apperrors.NewBadRequestError("Unknown entity kind: " + query.Kind)
		}
		filter.Kind = kind
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	entries, total, err := s.logRepo.FindPage(db.WithContext(storeCtx), filter)
	if err != nil {
		return nil, handleStoreError(filter.Kind, "", err)
	}

	result := dto.NewPage(entries, total, page, limit)
	return &result, nil
}

func (s *AdminServiceImpl) ensureUnique(tx *gorm.DB, kind models.EntityKind, column, value string) error {
	exists, err := s.entityRepo.Exists(tx, kind, column, value)
	if err != nil {
		return handleStoreError(kind, "", err)
	}
	if exists {
		return apperrors.ErrDuplicate(kind.String(), column)
	}
	return nil
}

// createError: гонка между проверкой и вставкой тоже дает 409
func (s *AdminServiceImpl) createError(kind models.EntityKind, field string, err error) error {
	if apperrors.Is(err, repositories.ErrDuplicateEntity) {
		return apperrors.ErrDuplicate(kind.String(), field)
	}
	return handleStoreError(kind, "", err)
}

// =======================
// Вспомогательные функции
// =======================

func normalizePage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if limit < 1 {
		limit = 1
	}
	return page, limit
}

// pageOffset насыщается до math.MaxInt: такая страница заведомо за пределами выборки,
// и хранилище вернёт пустые данные с настоящим total
func pageOffset(page, limit int) int {
	if page <= 1 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// buildCriteria проверяет статус и даты фильтра; смещение и лимит заполняет вызывающий
func buildCriteria(kind models.EntityKind, query dto.ListQuery) (repositories.EntityCriteria, error) {
	criteria := repositories.EntityCriteria{
		Search:  strings.TrimSpace(query.Search),
		Filters: query.EntityFilters(),
	}

	if query.Status != "" {
		status, err := models.ValidateStatus(kind, query.Status)
		if err != nil {
			return criteria, apperrors.ErrInvalidEntityStatus(kind.String(), query.Status)
		}
		criteria.Status = status
	}

	var err error
	if criteria.DateFrom, err = parseDate("dateFrom", query.DateFrom, false); err != nil {
		return criteria, err
	}
	if criteria.DateTo, err = parseDate("dateTo", query.DateTo, true); err != nil {
		return criteria, err
	}
	if criteria.DateFrom != nil && criteria.DateTo != nil && criteria.DateTo.Before(*criteria.DateFrom) {
		return criteria, apperrors.NewBadRequestError("dateTo must not be before dateFrom")
	}
	return criteria, nil
}

// parseDate принимает RFC3339 или YYYY-MM-DD; для верхней границы дата без времени включает весь день
func parseDate(field, value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}
	return nil, apperrors.ValidationError(map[string]string{field: "Must be a date in RFC3339 or YYYY-MM-DD format"})
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

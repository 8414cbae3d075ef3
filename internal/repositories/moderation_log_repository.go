package repositories

import (
	"jobportal_backend/internal/models"

	"gorm.io/gorm"
)

type ModerationLogFilter struct {
	Kind     models.EntityKind
	EntityID string
	Offset   int
	Limit    int
}

type ModerationLogRepository interface {
	Create(db *gorm.DB, entry *models.ModerationLog) error
	CreateBatch(db *gorm.DB, entries []models.ModerationLog) error
	FindPage(db *gorm.DB, filter ModerationLogFilter) ([]models.ModerationLog, int64, error)
}

type ModerationLogRepositoryImpl struct{}

func NewModerationLogRepository() ModerationLogRepository {
	return &ModerationLogRepositoryImpl{}
}

func (r *ModerationLogRepositoryImpl) Create(db *gorm.DB, entry *models.ModerationLog) error {
	return classifyError(db.Create(entry).Error)
}

func (r *ModerationLogRepositoryImpl) CreateBatch(db *gorm.DB, entries []models.ModerationLog) error {
	if len(entries) == 0 {
		return nil
	}
	return classifyError(db.CreateInBatches(entries, 100).Error)
}

func (r *ModerationLogRepositoryImpl) FindPage(db *gorm.DB, filter ModerationLogFilter) ([]models.ModerationLog, int64, error) {
	scoped := func() *gorm.DB {
		query := db.Model(&models.ModerationLog{})
		if filter.Kind != "" {
			query = query.Where("entity_kind = ?", filter.Kind)
		}
		if filter.EntityID != "" {
			query = query.Where("entity_id = ?", filter.EntityID)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, classifyError(err)
	}

	entries := []models.ModerationLog{}
	if total == 0 || int64(filter.Offset) >= total {
		return entries, total, nil
	}

	err := scoped().Order("created_at DESC").Order("id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, classifyError(err)
	}
	return entries, total, nil
}

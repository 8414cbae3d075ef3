package repositories

import (
	"time"

	"jobportal_backend/internal/models"

	"gorm.io/gorm"
)

type JobRepository interface {
	// FindExpiredPublished возвращает опубликованные вакансии с expires_at в прошлом
	FindExpiredPublished(db *gorm.DB, now time.Time, limit int) ([]models.Job, error)
}

type JobRepositoryImpl struct{}

func NewJobRepository() JobRepository {
	return &JobRepositoryImpl{}
}

func (r *JobRepositoryImpl) FindExpiredPublished(db *gorm.DB, now time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := db.Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.JobStatusPublished, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, classifyError(err)
	}
	return jobs, nil
}

package workers

import (
	"context"
	"time"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/telemetry"

	"gorm.io/gorm"
)

const expiryReason = "Срок публикации истек"

// JobWorker переводит опубликованные вакансии с истекшим expires_at в expired
type JobWorker struct {
	db       *gorm.DB
	jobRepo  repositories.JobRepository
	bulk     services.BulkActionService
	interval time.Duration
	batch    int
	now      func() time.Time
}

func NewJobWorker(db *gorm.DB, jobRepo repositories.JobRepository, bulk services.BulkActionService, interval time.Duration, batch int) *JobWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if batch <= 0 {
		batch = 200
	}
	return &JobWorker{
		db:       db,
		jobRepo:  jobRepo,
		bulk:     bulk,
		interval: interval,
		batch:    batch,
		now:      time.Now,
	}
}

// Start запускает фоновый цикл; останавливается при отмене ctx
func (w *JobWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *JobWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("job expiry worker stopped")
			return
		case <-ticker.C:
			expired, err := w.ExpireJobs(ctx)
			logger.WorkerLog("job_expiry", "expire", expired, err)
		}
	}
}

// ExpireJobs обрабатывает просроченные вакансии пачками и возвращает число переведенных
func (w *JobWorker) ExpireJobs(ctx context.Context) (int, error) {
	total := 0
	for {
		jobs, err := w.jobRepo.FindExpiredPublished(w.db.WithContext(ctx), w.now(), w.batch)
		if err != nil {
			return total, err
		}
		if len(jobs) == 0 {
			break
		}

		ids := make([]string, len(jobs))
		for i := range jobs {
			ids[i] = jobs[i].ID
		}

		result, err := w.bulk.ApplyStatus(ctx, w.db, models.KindJob, ids, string(models.JobStatusExpired), expiryReason, models.SystemActor)
		if err != nil {
			return total, err
		}

		total += len(result.Succeeded)
		telemetry.JobsExpired.Add(float64(len(result.Succeeded)))
		for id, reason := range result.Failed {
			logger.Warn("failed to expire job", "job_id", id, "reason", reason)
		}

		// неудачные id вернутся в следующей выборке; не крутимся на них в этом проходе
		if len(result.Succeeded) == 0 || len(jobs) < w.batch {
			break
		}
	}

	return total, nil
}

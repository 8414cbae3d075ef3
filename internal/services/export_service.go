package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobportal_backend/internal/config"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/storage"
	"jobportal_backend/pkg/apperrors"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	exportBatchSize   = 500
	defaultExportRows = 10000
)

// ExportService выгружает отфильтрованный листинг в CSV
type ExportService interface {
	Export(ctx context.Context, db *gorm.DB, kind models.EntityKind, query dto.ListQuery, actorID string) (*dto.ExportResult, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

type ExportServiceImpl struct {
	entityRepo repositories.EntityRepository
	storage    storage.Storage
	maxRows    int
	timeout    time.Duration
}

func NewExportService(entityRepo repositories.EntityRepository, store storage.Storage, cfg config.AdminConfig) ExportService {
	maxRows := cfg.ExportMaxRows
	if maxRows <= 0 {
		maxRows = defaultExportRows
	}
	return &ExportServiceImpl{
		entityRepo: entityRepo,
		storage:    store,
		maxRows:    maxRows,
		timeout:    cfg.StoreTimeout,
	}
}

// exportRow - общая строка CSV для всех видов
type exportRow struct {
	ID        string `csv:"id"`
	Kind      string `csv:"kind"`
	Status    string `csv:"status"`
	Label     string `csv:"label"`
	Owner     string `csv:"owner"`
	CreatedAt string `csv:"created_at"`
}

func (s *ExportServiceImpl) Export(ctx context.Context, db *gorm.DB, kind models.EntityKind, query dto.ListQuery, actorID string) (*dto.ExportResult, error) {
	criteria, err := buildCriteria(kind, query)
	if err != nil {
		return nil, err
	}

	rows := make([]*exportRow, 0, exportBatchSize)
	for len(rows) < s.maxRows {
		batch := exportBatchSize
		if remaining := s.maxRows - len(rows); remaining < batch {
			batch = remaining
		}
		criteria.Offset = len(rows)
		criteria.Limit = batch

		entities, total, err := s.findBatch(ctx, db, kind, criteria)
		if err != nil {
			return nil, handleStoreError(kind, "", err)
		}
		for _, entity := range entities {
			rows = append(rows, toExportRow(kind, entity))
		}
		if len(entities) < batch || int64(len(rows)) >= total {
			break
		}
	}

	content, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("marshal csv: %w", err))
	}

	path := fmt.Sprintf("exports/%s-%s-%s.csv", kind, time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	if err := s.storage.Save(ctx, path, bytes.NewReader(content), "text/csv"); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternalServiceError, "export", "Failed to store export file", http.StatusBadGateway)
	}

	url, err := s.storage.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternalServiceError, "export", "Failed to build export URL", http.StatusBadGateway)
	}

	logger.CtxInfo(ctx, "export created", "kind", kind, "rows", len(rows), "path", path, "actor_id", actorID)
	return &dto.ExportResult{URL: url, Rows: len(rows)}, nil
}

// Open отдает ранее сохраненную выгрузку; доступны только файлы каталога exports
func (s *ExportServiceImpl) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	path = strings.TrimPrefix(path, "/")
	if !strings.HasPrefix(path, "exports/") || strings.Contains(path, "..") {
		return nil, apperrors.ErrEntityNotFound("export", path)
	}
	reader, err := s.storage.Get(ctx, path)
	if err != nil {
		if apperrors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperrors.ErrEntityNotFound("export", path)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeExternalServiceError, "export", "Failed to read export file", http.StatusBadGateway)
	}
	return reader, nil
}

func (s *ExportServiceImpl) findBatch(ctx context.Context, db *gorm.DB, kind models.EntityKind, criteria repositories.EntityCriteria) ([]models.Entity, int64, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	return s.entityRepo.FindPage(db.WithContext(storeCtx), kind, criteria)
}

func toExportRow(kind models.EntityKind, entity models.Entity) *exportRow {
	row := &exportRow{
		ID:        entity.GetID(),
		Kind:      kind.String(),
		CreatedAt: entity.GetCreatedAt().UTC().Format(time.RFC3339),
	}
	if m, ok := entity.(models.Moderable); ok {
		row.Status = m.GetStatus()
	}

	switch e := entity.(type) {
	case *models.User:
		row.Label, row.Owner = e.Email, e.FullName()
	case *models.Job:
		row.Label, row.Owner = e.Title, e.CompanyID
	case *models.Company:
		row.Label, row.Owner = e.Name, e.ContactEmail
	case *models.Application:
		row.Label, row.Owner = e.JobID, e.ApplicantEmail
	case *models.BlogComment:
		row.Label, row.Owner = e.Content, e.AuthorEmail
	case *models.Skill:
		row.Label = e.Name
	case *models.JobCategory:
		row.Label, row.Owner = e.Name, e.Slug
	}
	return row
}

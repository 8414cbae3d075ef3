package services

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/cache"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/storage"
	"jobportal_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStatsService_CachesUntilInvalidated(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(repositories.NewEntityRepository(), cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, 5*time.Second)
	ctx := context.Background()

	seedPublishedJobs(t, db, 2)
	require.NoError(t, db.Create(&models.Skill{Name: "Go"}).Error)

	stats, err := svc.GetDashboardStats(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["job"].Total)
	assert.Equal(t, int64(2), stats["job"].ByStatus["published"])
	assert.Equal(t, int64(1), stats["skill"].Total)
	assert.Nil(t, stats["skill"].ByStatus)
	assert.Len(t, stats, len(models.AllKinds()))

	seedPublishedJobs(t, db, 1)
	stats, err = svc.GetDashboardStats(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["job"].Total, "served from cache")

	svc.Invalidate(ctx)
	stats, err = svc.GetDashboardStats(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats["job"].Total)
}

// countHookRepo вызывает hook один раз, до первого подсчета
type countHookRepo struct {
	repositories.EntityRepository
	once sync.Once
	hook func()
}

func (r *countHookRepo) CountByStatus(db *gorm.DB, kind models.EntityKind) (int64, map[string]int64, error) {
	r.once.Do(r.hook)
	return r.EntityRepository.CountByStatus(db, kind)
}

func TestStatsService_InvalidateDuringCountIsNotOverwritten(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedPublishedJobs(t, db, 2)

	repo := &countHookRepo{EntityRepository: repositories.NewEntityRepository()}
	svc := NewStatsService(repo, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, 5*time.Second)
	var insertErr error
	repo.hook = func() {
		insertErr = db.Create(&models.Job{CompanyID: "company-1", Title: "late", Status: models.JobStatusPublished}).Error
		svc.Invalidate(ctx)
	}

	_, err := svc.GetDashboardStats(ctx, db)
	require.NoError(t, err)
	require.NoError(t, insertErr)

	stats, err := svc.GetDashboardStats(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats["job"].Total)
}

func TestExportService_WritesCSV(t *testing.T) {
	db := newTestDB(t)
	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir(), BaseURL: "/api/v1/files"})
	require.NoError(t, err)

	cfg := testAdminConfig()
	cfg.ExportMaxRows = 3
	svc := NewExportService(repositories.NewEntityRepository(), store, cfg)
	ctx := context.Background()

	seedPublishedJobs(t, db, 5)

	result, err := svc.Export(ctx, db, models.KindJob, dto.ListQuery{Status: "published"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Rows)
	require.True(t, strings.HasPrefix(result.URL, "/api/v1/files/exports/job-"), result.URL)

	reader, err := svc.Open(ctx, strings.TrimPrefix(result.URL, "/api/v1/files/"))
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(content))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"id", "kind", "status", "label", "owner", "created_at"}, records[0])
	assert.Equal(t, "published", records[1][2])
	assert.Equal(t, "job 4", records[1][3])
}

func TestExportService_RejectsInvalidStatusAndForeignPaths(t *testing.T) {
	db := newTestDB(t)
	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)
	svc := NewExportService(repositories.NewEntityRepository(), store, testAdminConfig())
	ctx := context.Background()

	_, err = svc.Export(ctx, db, models.KindUser, dto.ListQuery{Status: "published"}, "admin-1")
	requireAppError(t, err, apperrors.CodeInvalidStatus, http.StatusBadRequest)

	_, err = svc.Open(ctx, "../config.yaml")
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)

	_, err = svc.Open(ctx, "exports/missing.csv")
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func newAuthFixture(t *testing.T) (AuthService, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(repositories.NewUserRepository(), repositories.NewEntityRepository(), tokens, 5*time.Second), tokens
}

func TestAuthService_Login(t *testing.T) {
	db := newTestDB(t)
	svc, tokens := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, db, "Root@Example.test", "admin-password"))

	resp, err := svc.Login(ctx, db, &dto.LoginRequest{Email: "root@example.test", Password: "admin-password"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := tokens.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Email: "root@example.test", Password: "wrong-password"})
	requireAppError(t, err, apperrors.CodeInvalidCredentials, http.StatusUnauthorized)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Email: "nobody@example.test", Password: "admin-password"})
	requireAppError(t, err, apperrors.CodeInvalidCredentials, http.StatusUnauthorized)
}

func TestAuthService_LoginRejectsNonAdminsAndBanned(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	hash, err := auth.HashPassword("password-123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Email: "hr@example.test", PasswordHash: hash, Role: models.UserRoleHR, Status: models.UserStatusActive}).Error)
	require.NoError(t, db.Create(&models.User{Email: "banned@example.test", PasswordHash: hash, Role: models.UserRoleAdmin, Status: models.UserStatusBanned}).Error)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Email: "hr@example.test", Password: "password-123"})
	requireAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Email: "banned@example.test", Password: "password-123"})
	requireAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)
}

func TestAuthService_EnsureAdminIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, db, "", ""))
	require.NoError(t, svc.EnsureAdmin(ctx, db, "first@example.test", "admin-password"))
	require.NoError(t, svc.EnsureAdmin(ctx, db, "second@example.test", "admin-password"))

	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&admins).Error)
	assert.Equal(t, int64(1), admins)
}

func TestNotificationService_SendsToOwner(t *testing.T) {
	provider := email.NewNoopProvider(email.NewDefaultTemplateManager())
	svc := NewNotificationService(provider)

	user := &models.User{Email: "owner@example.test", FirstName: "Ann"}
	svc.NotifyStatusChange(context.Background(), dto.StatusChange{
		Kind:   models.KindUser,
		Entity: user,
		From:   "active",
		To:     "banned",
		Reason: "spam",
	})
	svc.NotifyStatusChange(context.Background(), dto.StatusChange{
		Kind:   models.KindJob,
		Entity: &models.Job{Title: "no owner email"},
		To:     "closed",
	})
	svc.Wait()

	sent := provider.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"owner@example.test"}, sent[0].To)
	assert.Contains(t, sent[0].HTMLBody, "banned")
	assert.Contains(t, sent[0].HTMLBody, "spam")
}

func TestNotificationService_SurvivesCanceledRequest(t *testing.T) {
	provider := email.NewNoopProvider(email.NewDefaultTemplateManager())
	svc := NewNotificationService(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.NotifyStatusChange(ctx, dto.StatusChange{
		Kind:   models.KindApplication,
		Entity: &models.Application{ApplicantEmail: "candidate@example.test"},
		To:     "hired",
	})
	svc.Wait()

	assert.Len(t, provider.Sent(), 1)
}

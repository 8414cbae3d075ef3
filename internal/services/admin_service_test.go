package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"jobportal_backend/database"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func testAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		MaxBulkIDs:      500,
		BulkWorkers:     4,
		StoreTimeout:    5 * time.Second,
		StatsTTL:        time.Minute,
		ExportMaxRows:   10000,
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []dto.StatusChange
}

func (n *recordingNotifier) NotifyStatusChange(_ context.Context, change dto.StatusChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) Wait() {}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changes)
}

type countingStats struct {
	mu            sync.Mutex
	invalidations int
}

func (s *countingStats) GetDashboardStats(context.Context, *gorm.DB) (dto.DashboardStats, error) {
	return dto.DashboardStats{}, nil
}

func (s *countingStats) Invalidate(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
}

func (s *countingStats) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidations
}

type adminFixture struct {
	db       *gorm.DB
	service  AdminService
	notifier *recordingNotifier
	stats    *countingStats
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		db:       newTestDB(t),
		notifier: &recordingNotifier{},
		stats:    &countingStats{},
	}
	f.service = NewAdminService(
		repositories.NewEntityRepository(),
		repositories.NewModerationLogRepository(),
		f.stats,
		f.notifier,
		testAdminConfig(),
	)
	return f
}

func requireAppError(t *testing.T, err error, code apperrors.ErrorCode, status int) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected *AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.HTTPCode)
	return appErr
}

func seedPublishedJobs(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		job := models.Job{CompanyID: "company-1", Title: fmt.Sprintf("job %d", i), Status: models.JobStatusPublished}
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&job).Error)
	}
}

func TestListEntities_PageEnvelope(t *testing.T) {
	f := newAdminFixture(t)
	seedPublishedJobs(t, f.db, 25)

	page, err := f.service.ListEntities(context.Background(), f.db, models.KindJob, dto.ListQuery{
		Page:   2,
		Limit:  10,
		Status: "published",
	})
	require.NoError(t, err)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 3, page.TotalPages)
}

func TestListEntities_ClampsPaging(t *testing.T) {
	f := newAdminFixture(t)
	seedPublishedJobs(t, f.db, 3)

	page, err := f.service.ListEntities(context.Background(), f.db, models.KindJob, dto.ListQuery{Page: 0, Limit: 100000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
	assert.Len(t, page.Data, 3)

	page, err = f.service.ListEntities(context.Background(), f.db, models.KindJob, dto.ListQuery{Page: -3, Limit: -1})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
}

func TestListEntities_EmptyStore(t *testing.T) {
	f := newAdminFixture(t)

	page, err := f.service.ListEntities(context.Background(), f.db, models.KindBlogComment, dto.ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 0, page.TotalPages)
}

func TestListEntities_PageBeyondRangeKeepsTotal(t *testing.T) {
	f := newAdminFixture(t)
	for _, name := range []string{"Go", "Rust", "SQL", "Docker", "Kafka"} {
		require.NoError(t, f.db.Create(&models.Skill{Name: name}).Error)
	}

	for _, pageNum := range []int{4, math.MaxInt / 2, math.MaxInt} {
		page, err := f.service.ListEntities(context.Background(), f.db, models.KindSkill, dto.ListQuery{Page: pageNum, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, page.Data, "page %d", pageNum)
		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, pageNum, page.Page)
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(1, 20))
	assert.Equal(t, 40, pageOffset(3, 20))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt, 2))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt/100+2, 100))
}

func TestListEntities_InvalidStatus(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.service.ListEntities(context.Background(), f.db, models.KindJob, dto.ListQuery{Status: "approved"})
	requireAppError(t, err, apperrors.CodeInvalidStatus, http.StatusBadRequest)
}

func TestListEntities_UnsupportedFilter(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.service.ListEntities(context.Background(), f.db, models.KindJob, dto.ListQuery{Role: "admin"})
	requireAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)
}

func TestListEntities_BadDate(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.service.ListEntities(context.Background(), f.db, models.KindJob, dto.ListQuery{DateFrom: "yesterday"})
	requireAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)
}

func TestListEntities_DateOnlyUpperBoundIncludesDay(t *testing.T) {
	f := newAdminFixture(t)
	seedPublishedJobs(t, f.db, 2) // 2024-03-01 12:00 и 12:01

	page, err := f.service.ListEntities(context.Background(), f.db, models.KindJob, dto.ListQuery{
		DateFrom: "2024-03-01",
		DateTo:   "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestUpdateStatus_RecordsChange(t *testing.T) {
	f := newAdminFixture(t)
	company := models.Company{Name: "Acme", ContactEmail: "hr@acme.test", Status: models.CompanyStatusPendingVerification}
	require.NoError(t, f.db.Create(&company).Error)

	entity, err := f.service.UpdateStatus(context.Background(), f.db, models.KindCompany, company.ID,
		&dto.UpdateStatusRequest{Status: "active", Reason: "documents checked"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "active", entity.(models.Moderable).GetStatus())

	var logs []models.ModerationLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.KindCompany, logs[0].EntityKind)
	assert.Equal(t, "pending_verification", logs[0].FromStatus)
	assert.Equal(t, "active", logs[0].ToStatus)
	assert.Equal(t, "admin-1", logs[0].ActorID)
	assert.Equal(t, "documents checked", logs[0].Reason)

	assert.Equal(t, 1, f.notifier.count())
	assert.Equal(t, 1, f.stats.count())
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newAdminFixture(t)
	user := models.User{Email: "a@b.test", PasswordHash: "x", Role: models.UserRoleCandidate, Status: models.UserStatusActive}
	require.NoError(t, f.db.Create(&user).Error)

	_, err := f.service.UpdateStatus(context.Background(), f.db, models.KindUser, user.ID,
		&dto.UpdateStatusRequest{Status: "active"}, "admin-1")
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&models.ModerationLog{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, f.notifier.count())
	assert.Zero(t, f.stats.count())
}

func TestUpdateStatus_InvalidStatusLeavesEntity(t *testing.T) {
	f := newAdminFixture(t)
	job := models.Job{CompanyID: "c", Title: "Go developer", Status: models.JobStatusDraft}
	require.NoError(t, f.db.Create(&job).Error)

	_, err := f.service.UpdateStatus(context.Background(), f.db, models.KindJob, job.ID,
		&dto.UpdateStatusRequest{Status: "approved"}, "admin-1")
	appErr := requireAppError(t, err, apperrors.CodeInvalidStatus, http.StatusBadRequest)
	assert.Equal(t, map[string]string{"kind": "job", "status": "approved"}, appErr.Details)

	var reloaded models.Job
	require.NoError(t, f.db.First(&reloaded, "id = ?", job.ID).Error)
	assert.Equal(t, models.JobStatusDraft, reloaded.Status)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.service.UpdateStatus(context.Background(), f.db, models.KindApplication, "missing",
		&dto.UpdateStatusRequest{Status: "hired"}, "admin-1")
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestUpdateStatus_NonModerableKind(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.service.UpdateStatus(context.Background(), f.db, models.KindSkill, "any",
		&dto.UpdateStatusRequest{Status: "active"}, "admin-1")
	requireAppError(t, err, apperrors.CodeInvalidOperation, http.StatusBadRequest)
}

func TestDeleteEntity_Policies(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	user := models.User{Email: "gone@b.test", PasswordHash: "x", Role: models.UserRoleHR}
	require.NoError(t, f.db.Create(&user).Error)
	company := models.Company{Name: "Temp"}
	require.NoError(t, f.db.Create(&company).Error)

	require.NoError(t, f.service.DeleteEntity(ctx, f.db, models.KindUser, user.ID, "admin-1"))
	require.NoError(t, f.service.DeleteEntity(ctx, f.db, models.KindCompany, company.ID, "admin-1"))

	// мягко удаленный пользователь остается в таблице
	var userRows int64
	require.NoError(t, f.db.Unscoped().Model(&models.User{}).Where("id = ?", user.ID).Count(&userRows).Error)
	assert.Equal(t, int64(1), userRows)

	_, err := f.service.GetEntity(ctx, f.db, models.KindUser, user.ID)
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)

	var companyRows int64
	require.NoError(t, f.db.Unscoped().Model(&models.Company{}).Where("id = ?", company.ID).Count(&companyRows).Error)
	assert.Zero(t, companyRows)

	err = f.service.DeleteEntity(ctx, f.db, models.KindCompany, company.ID, "admin-1")
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	assert.Equal(t, 2, f.stats.count())
}

func TestCreateUser(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	req := &dto.CreateUserRequest{Email: "New@Example.test", Password: "secret-pass", Role: "employer"}

	user, err := f.service.CreateUser(ctx, f.db, req)
	require.NoError(t, err)
	assert.Equal(t, "new@example.test", user.Email)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.NotEqual(t, "secret-pass", user.PasswordHash)

	_, err = f.service.CreateUser(ctx, f.db, req)
	requireAppError(t, err, apperrors.CodeAlreadyExists, http.StatusConflict)
}

func TestCreateUser_DuplicateOfDeletedUser(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	req := &dto.CreateUserRequest{Email: "twice@example.test", Password: "secret-pass", Role: "hr"}

	user, err := f.service.CreateUser(ctx, f.db, req)
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteEntity(ctx, f.db, models.KindUser, user.ID, "admin-1"))

	_, err = f.service.CreateUser(ctx, f.db, req)
	requireAppError(t, err, apperrors.CodeAlreadyExists, http.StatusConflict)
}

func TestCreateSkillAndCategory(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	skill, err := f.service.CreateSkill(ctx, f.db, &dto.CreateSkillRequest{Name: " Go "})
	require.NoError(t, err)
	assert.Equal(t, "Go", skill.Name)

	_, err = f.service.CreateSkill(ctx, f.db, &dto.CreateSkillRequest{Name: "Go"})
	requireAppError(t, err, apperrors.CodeAlreadyExists, http.StatusConflict)

	category, err := f.service.CreateCategory(ctx, f.db, &dto.CreateCategoryRequest{Name: "Backend & Infra"})
	require.NoError(t, err)
	assert.Equal(t, "backend-infra", category.Slug)

	_, err = f.service.CreateCategory(ctx, f.db, &dto.CreateCategoryRequest{Name: "Other", Slug: "backend-infra"})
	appErr := requireAppError(t, err, apperrors.CodeAlreadyExists, http.StatusConflict)
	assert.Equal(t, map[string]string{"field": "slug"}, appErr.Details)
}

func TestListModerationLogs(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	comment := models.BlogComment{BlogID: "blog-1", Content: "hi", Status: models.CommentStatusPending}
	require.NoError(t, f.db.Create(&comment).Error)
	for _, status := range []string{"approved", "rejected", "approved"} {
		_, err := f.service.UpdateStatus(ctx, f.db, models.KindBlogComment, comment.ID,
			&dto.UpdateStatusRequest{Status: status}, "admin-1")
		require.NoError(t, err)
	}

	page, err := f.service.ListModerationLogs(ctx, f.db, dto.ModerationLogQuery{Kind: "blog/comments", EntityID: comment.ID, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 2)

	page, err = f.service.ListModerationLogs(ctx, f.db, dto.ModerationLogQuery{EntityID: comment.ID, Page: math.MaxInt, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.service.ListModerationLogs(ctx, f.db, dto.ModerationLogQuery{Kind: "job"})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Backend":            "backend",
		"  Data  Science  ":  "data-science",
		"C++ / Rust":         "c-rust",
		"Разработка ПО":      "разработка-по",
		"---":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, slugify(in), in)
	}
}

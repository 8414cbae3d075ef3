package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// flakyRepository отдает заданные ошибки для отдельных id
type flakyRepository struct {
	repositories.EntityRepository
	failures map[string]error
}

func (r *flakyRepository) UpdateStatus(db *gorm.DB, kind models.EntityKind, id, status, reason string) (models.Entity, string, error) {
	if err, ok := r.failures[id]; ok {
		return nil, "", err
	}
	return r.EntityRepository.UpdateStatus(db, kind, id, status, reason)
}

type bulkFixture struct {
	db       *gorm.DB
	service  BulkActionService
	notifier *recordingNotifier
	stats    *countingStats
}

func newBulkFixture(t *testing.T, repo repositories.EntityRepository) *bulkFixture {
	t.Helper()
	if repo == nil {
		repo = repositories.NewEntityRepository()
	}
	cfg := testAdminConfig()
	cfg.MaxBulkIDs = 200

	f := &bulkFixture{
		db:       newTestDB(t),
		notifier: &recordingNotifier{},
		stats:    &countingStats{},
	}
	f.service = NewBulkActionService(repo, repositories.NewModerationLogRepository(), f.stats, f.notifier, cfg)
	return f
}

func seedComments(t *testing.T, db *gorm.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		comment := models.BlogComment{BlogID: "blog-1", Content: "text " + id, Status: models.CommentStatusPending}
		comment.ID = id
		require.NoError(t, db.Create(&comment).Error)
	}
}

func commentStatus(t *testing.T, db *gorm.DB, id string) models.CommentStatus {
	t.Helper()
	var comment models.BlogComment
	require.NoError(t, db.First(&comment, "id = ?", id).Error)
	return comment.Status
}

func TestApplyStatus_PartialNotFound(t *testing.T) {
	f := newBulkFixture(t, nil)
	seedComments(t, f.db, "c1", "c3")

	result, err := f.service.ApplyStatus(context.Background(), f.db, models.KindBlogComment,
		[]string{"c1", "c2", "c3"}, "approved", "", "admin-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"c1", "c3"}, result.Succeeded)
	assert.Equal(t, map[string]string{"c2": "not found"}, result.Failed)
	assert.Equal(t, models.CommentStatusApproved, commentStatus(t, f.db, "c1"))
	assert.Equal(t, models.CommentStatusApproved, commentStatus(t, f.db, "c3"))

	var logs int64
	require.NoError(t, f.db.Model(&models.ModerationLog{}).Count(&logs).Error)
	assert.Equal(t, int64(2), logs)
	assert.Equal(t, 1, f.stats.count())
}

func TestApplyStatus_StoreFailureIsPerItem(t *testing.T) {
	repo := &flakyRepository{
		EntityRepository: repositories.NewEntityRepository(),
		failures: map[string]error{
			"c2": fmt.Errorf("%w: connection reset", repositories.ErrStoreUnavailable),
		},
	}
	f := newBulkFixture(t, repo)
	seedComments(t, f.db, "c1", "c2", "c3")

	result, err := f.service.ApplyStatus(context.Background(), f.db, models.KindBlogComment,
		[]string{"c3", "c2", "c1"}, "rejected", "spam", "admin-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"c3", "c1"}, result.Succeeded)
	assert.Equal(t, map[string]string{"c2": "store unavailable"}, result.Failed)
	assert.Equal(t, models.CommentStatusPending, commentStatus(t, f.db, "c2"))
}

func TestApplyStatus_ManyIDsInParallel(t *testing.T) {
	f := newBulkFixture(t, nil)

	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("comment-%03d", i)
	}
	seedComments(t, f.db, ids...)

	result, err := f.service.ApplyStatus(context.Background(), f.db, models.KindBlogComment, ids, "approved", "", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, ids, result.Succeeded)
	assert.Empty(t, result.Failed)

	var approved int64
	require.NoError(t, f.db.Model(&models.BlogComment{}).Where("status = ?", "approved").Count(&approved).Error)
	assert.Equal(t, int64(150), approved)
}

func TestApplyStatus_DuplicateIDsCountedOnce(t *testing.T) {
	f := newBulkFixture(t, nil)
	seedComments(t, f.db, "c1")

	result, err := f.service.ApplyStatus(context.Background(), f.db, models.KindBlogComment,
		[]string{"c1", "c1", " c1 "}, "approved", "", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, result.Succeeded)
	assert.Empty(t, result.Failed)

	var logs int64
	require.NoError(t, f.db.Model(&models.ModerationLog{}).Count(&logs).Error)
	assert.Equal(t, int64(1), logs)
}

func TestApplyStatus_AlreadyInStatusSucceedsWithoutLog(t *testing.T) {
	f := newBulkFixture(t, nil)
	seedComments(t, f.db, "c1")

	result, err := f.service.ApplyStatus(context.Background(), f.db, models.KindBlogComment,
		[]string{"c1"}, "pending", "", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, result.Succeeded)
	assert.Zero(t, f.notifier.count())
	assert.Zero(t, f.stats.count())
}

func TestApplyStatus_RequestErrors(t *testing.T) {
	f := newBulkFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.ApplyStatus(ctx, f.db, models.KindBlogComment, nil, "approved", "", "admin-1")
	requireAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)

	_, err = f.service.ApplyStatus(ctx, f.db, models.KindBlogComment, []string{"", " "}, "approved", "", "admin-1")
	requireAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)

	tooMany := make([]string, 201)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("id-%d", i)
	}
	_, err = f.service.ApplyStatus(ctx, f.db, models.KindBlogComment, tooMany, "approved", "", "admin-1")
	requireAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)

	_, err = f.service.ApplyStatus(ctx, f.db, models.KindBlogComment, []string{"c1"}, "published", "", "admin-1")
	requireAppError(t, err, apperrors.CodeInvalidStatus, http.StatusBadRequest)

	_, err = f.service.ApplyStatus(ctx, f.db, models.KindJobCategory, []string{"c1"}, "active", "", "admin-1")
	requireAppError(t, err, apperrors.CodeInvalidOperation, http.StatusBadRequest)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, uniqueIDs([]string{"a", "b", "a", "", "c", " b"}))
	assert.Empty(t, uniqueIDs(nil))
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobportal_backend/database"
	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c)})
	})
	r.GET("/ping", handlers...)
	return r
}

func perform(r http.Handler, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(AuthMiddleware(tokens), AdminOnly())

	w := perform(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")

	hrToken, err := tokens.GenerateToken("user-1", string(models.UserRoleHR))
	require.NoError(t, err)
	w = perform(r, bearer(hrToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, err := tokens.GenerateToken("admin-1", string(models.UserRoleAdmin))
	require.NoError(t, err)
	w = perform(r, bearer(adminToken))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"admin-1"}`, w.Body.String())
}

func TestActiveAccount(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	newUser := func(email string, role models.UserRole, status models.UserStatus) *models.User {
		u := &models.User{Email: email, FirstName: "A", LastName: "B", Role: role, Status: status, PasswordHash: "x"}
		require.NoError(t, db.Create(u).Error)
		return u
	}
	active := newUser("active@example.com", models.UserRoleAdmin, models.UserStatusActive)
	banned := newUser("banned@example.com", models.UserRoleAdmin, models.UserStatusBanned)
	inactive := newUser("inactive@example.com", models.UserRoleAdmin, models.UserStatusInactive)
	demoted := newUser("demoted@example.com", models.UserRoleHR, models.UserStatusActive)
	deleted := newUser("deleted@example.com", models.UserRoleAdmin, models.UserStatusActive)
	require.NoError(t, db.Delete(deleted).Error)

	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(DBMiddleware(db), AuthMiddleware(tokens), ActiveAccount(repositories.NewUserRepository()), AdminOnly())

	tests := []struct {
		user   *models.User
		status int
		body   string
	}{
		{active, http.StatusOK, active.ID},
		{banned, http.StatusForbidden, "banned"},
		{inactive, http.StatusForbidden, "not active"},
		{demoted, http.StatusForbidden, "FORBIDDEN"},
		{deleted, http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		// все токены выписаны с ролью admin
		token, err := tokens.GenerateToken(tt.user.ID, string(models.UserRoleAdmin))
		require.NoError(t, err)

		w := perform(r, bearer(token))
		assert.Equal(t, tt.status, w.Code, tt.user.Email)
		assert.Contains(t, w.Body.String(), tt.body, tt.user.Email)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newRouter()

	w := perform(r, http.Header{"X-Request-Id": []string{"req-42"}})
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = perform(r, nil)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, float64, error) {
	l.keys = append(l.keys, key)
	return l.allowed, 0, l.err
}

func TestRateLimitMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	adminToken, err := tokens.GenerateToken("admin-1", string(models.UserRoleAdmin))
	require.NoError(t, err)

	deny := &stubLimiter{allowed: false}
	w := perform(newRouter(AuthMiddleware(tokens), RateLimitMiddleware(deny)), bearer(adminToken))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, []string{"admin-1"}, deny.keys)

	allow := &stubLimiter{allowed: true}
	w = perform(newRouter(AuthMiddleware(tokens), RateLimitMiddleware(allow)), bearer(adminToken))
	assert.Equal(t, http.StatusOK, w.Code)

	broken := &stubLimiter{err: errors.New("redis: connection refused")}
	w = perform(newRouter(AuthMiddleware(tokens), RateLimitMiddleware(broken)), bearer(adminToken))
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(newRouter(RateLimitMiddleware(nil)), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://admin.example.test"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://admin.example.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://admin.example.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDBMiddlewarePrefersRequestTransaction(t *testing.T) {
	pool := &gorm.DB{}
	tx := &gorm.DB{}

	r := gin.New()
	r.Use(DBMiddleware(pool))
	r.GET("/ping", func(c *gin.Context) {
		val, _ := c.Get(contextkeys.GinDBKey)
		if val.(*gorm.DB) == tx {
			c.String(http.StatusOK, "tx")
			return
		}
		c.String(http.StatusOK, "pool")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pool", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req = req.WithContext(contextkeys.WithDB(req.Context(), tx))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "tx", w.Body.String())
}

package middleware

import (
	"errors"
	"strings"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/pkg/apperrors"
	"jobportal_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := tokens.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// ActiveAccount сверяет владельца токена с базой на каждом запросе.
// Удаленная учетная запись получает 401, заблокированная или неактивная 403.
// Роль в контексте заменяется текущей ролью из базы, поэтому ставится перед RequireRoles.
func ActiveAccount(users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, _ := c.Get(contextkeys.GinDBKey)
		db, ok := val.(*gorm.DB)
		if !ok {
			apperrors.HandleError(c, apperrors.ErrStoreUnavailable(errors.New("db is not set for request")))
			return
		}

		user, err := users.FindByID(db.WithContext(c.Request.Context()), GetUserID(c))
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				apperrors.HandleError(c, apperrors.ErrInvalidToken)
				return
			}
			logger.CtxWarn(c.Request.Context(), "account lookup failed", "error", err.Error())
			apperrors.HandleError(c, apperrors.ErrStoreUnavailable(err))
			return
		}

		switch user.Status {
		case models.UserStatusActive:
		case models.UserStatusBanned:
			apperrors.HandleError(c, apperrors.ErrUserBanned)
			return
		default:
			apperrors.HandleError(c, apperrors.NewForbiddenError("Account is not active"))
			return
		}

		c.Set(RoleKey, user.Role)
		c.Next()
	}
}

// RequireRoles - доступ только для перечисленных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		roleVal, exists := c.Get(RoleKey)
		if !exists {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}

		var role models.UserRole
		switch v := roleVal.(type) {
		case models.UserRole:
			role = v
		case string:
			role = models.UserRole(v)
		default:
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: invalid role type"))
			return
		}

		if !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}

		c.Next()
	}
}

// AdminOnly - сокращение для RequireRoles(admin)
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.UserRoleAdmin)
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	id, _ := c.Get(UserIDKey)
	userID, _ := id.(string)
	return userID
}

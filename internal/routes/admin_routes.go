package routes

import (
	"jobportal_backend/internal/handlers"
	"jobportal_backend/internal/middleware"
	"jobportal_backend/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes: /admin/*, пакетные операции дополнительно ограничены по частоте
func SetupAdminRoutes(r *gin.RouterGroup, appHandlers *handlers.AppHandlers, limiter ratelimit.Limiter) {
	admin := r.Group("/admin")
	appHandlers.AdminHandler.RegisterRoutes(admin, middleware.RateLimitMiddleware(limiter))
}

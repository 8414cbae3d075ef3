package routes

import (
	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/handlers"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/middleware"
	"jobportal_backend/internal/ratelimit"
	"jobportal_backend/internal/repositories"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options - зависимости маршрутов, не относящиеся к хэндлерам
type Options struct {
	Tokens      *auth.TokenManager
	Users       repositories.UserRepository
	BulkLimiter ratelimit.Limiter
	Swagger     bool
}

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, opts Options) {
	appHandlers.SystemHandler.RegisterRoutes(ginRouter)

	if opts.Swagger {
		ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		logger.Info("Swagger UI route /swagger/index.html registered")
	}

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)

		protected := api.Group("")
		protected.Use(
			middleware.AuthMiddleware(opts.Tokens),
			middleware.ActiveAccount(opts.Users),
			middleware.AdminOnly(),
		)

		SetupAdminRoutes(protected, appHandlers, opts.BulkLimiter)
		appHandlers.FileHandler.RegisterRoutes(protected)
	}
}

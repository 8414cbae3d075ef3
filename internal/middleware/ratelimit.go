package middleware

import (
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/ratelimit"
	"jobportal_backend/internal/telemetry"
	"jobportal_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware ограничивает пакетные операции на администратора.
// Если лимитер недоступен, запрос пропускается.
func RateLimitMiddleware(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := GetUserID(c)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, _, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "rate limiter unavailable, allowing request", "error", err.Error())
			c.Next()
			return
		}
		if !allowed {
			telemetry.RateLimitRejects.Inc()
			c.Header("Retry-After", "1")
			apperrors.HandleError(c, apperrors.ErrRateLimited)
			return
		}

		c.Next()
	}
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"jobportal_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// SystemHandler - health-check и метрики
type SystemHandler struct {
	*BaseHandler
	metrics http.Handler
}

func NewSystemHandler(base *BaseHandler, metrics http.Handler) *SystemHandler {
	return &SystemHandler{
		BaseHandler: base,
		metrics:     metrics,
	}
}

func (h *SystemHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics))
	}
}

// Health godoc
// @Summary Проверка состояния
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.CtxWithError(ctx, "health check failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

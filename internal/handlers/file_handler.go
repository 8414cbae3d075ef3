package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"jobportal_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// FileHandler отдает CSV-выгрузки из локального хранилища
type FileHandler struct {
	*BaseHandler
	exportService services.ExportService
}

func NewFileHandler(base *BaseHandler, exportService services.ExportService) *FileHandler {
	return &FileHandler{
		BaseHandler:   base,
		exportService: exportService,
	}
}

// RegisterRoutes: группа должна быть защищена auth и ролью admin
func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/files/*path", h.ServeFile)
}

// ServeFile godoc
// @Summary Скачать выгрузку
// @Tags files
// @Produce text/csv
// @Security BearerAuth
// @Param path path string true "Путь файла, например exports/job-....csv"
// @Success 200 {file} file
// @Failure 404 {object} apperrors.ErrorResponse "Файл не найден"
// @Router /files/{path} [get]
func (h *FileHandler) ServeFile(c *gin.Context) {
	path := c.Param("path")

	reader, err := h.exportService.Open(c.Request.Context(), path)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, "text/csv; charset=utf-8", reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filepath.Base(path)),
	})
}

package handlers

import (
	"net/http"

	"jobportal_backend/internal/middleware"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	*BaseHandler
	adminService  services.AdminService
	bulkService   services.BulkActionService
	statsService  services.StatsService
	exportService services.ExportService
}

func NewAdminHandler(
	base *BaseHandler,
	adminService services.AdminService,
	bulkService services.BulkActionService,
	statsService services.StatsService,
	exportService services.ExportService,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:   base,
		adminService:  adminService,
		bulkService:   bulkService,
		statsService:  statsService,
		exportService: exportService,
	}
}

// RegisterRoutes регистрирует /admin/*. Группа уже защищена auth и ролью admin.
// bulkLimit ставится только на пакетные маршруты.
func (h *AdminHandler) RegisterRoutes(admin *gin.RouterGroup, bulkLimit gin.HandlerFunc) {
	admin.GET("/stats", h.GetStats)
	admin.GET("/moderation-logs", h.ListModerationLogs)

	for _, kind := range models.AllKinds() {
		group := admin.Group("/" + kind.RoutePath())

		group.GET("", h.ListEntities(kind))
		group.GET("/export", h.ExportEntities(kind))
		group.GET("/:id", h.GetEntity(kind))
		group.DELETE("/:id", h.DeleteEntity(kind))

		if kind.IsModerable() {
			group.PUT("/:id/status", h.UpdateStatus(kind))
			group.POST("/bulk-status", bulkLimit, h.BulkStatus(kind))
		}
	}

	comments := admin.Group("/" + models.KindBlogComment.RoutePath())
	comments.POST("/bulk-approve", bulkLimit, h.BulkComments(models.CommentStatusApproved))
	comments.POST("/bulk-reject", bulkLimit, h.BulkComments(models.CommentStatusRejected))

	admin.POST("/"+models.KindUser.RoutePath(), h.CreateUser)
	admin.POST("/"+models.KindSkill.RoutePath(), h.CreateSkill)
	admin.POST("/"+models.KindJobCategory.RoutePath(), h.CreateCategory)
}

// ListEntities godoc
// @Summary Список сущностей
// @Description Постраничный список с фильтрами. page и limit приводятся к допустимым границам.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param kind path string true "users, jobs, companies, applications, blog/comments, skills, categories"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы"
// @Param status query string false "Статус"
// @Param search query string false "Поиск по тексту"
// @Param dateFrom query string false "RFC3339 или YYYY-MM-DD"
// @Param dateTo query string false "RFC3339 или YYYY-MM-DD"
// @Success 200 {object} dto.Page[models.Entity]
// @Failure 400 {object} apperrors.ErrorResponse "Некорректный фильтр"
// @Failure 503 {object} apperrors.ErrorResponse "Хранилище недоступно"
// @Router /admin/{kind} [get]
func (h *AdminHandler) ListEntities(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query dto.ListQuery
		if !h.BindAndValidate_Query(c, &query) {
			return
		}

		page, err := h.adminService.ListEntities(c.Request.Context(), h.GetDB(c), kind, query)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetEntity godoc
// @Summary Получить сущность по ID
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Вид сущности"
// @Param id path string true "ID"
// @Success 200 {object} models.Entity
// @Failure 404 {object} apperrors.ErrorResponse "Не найдено"
// @Router /admin/{kind}/{id} [get]
func (h *AdminHandler) GetEntity(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := RequireParam(c, "id")
		if !ok {
			return
		}

		entity, err := h.adminService.GetEntity(c.Request.Context(), h.GetDB(c), kind, id)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, entity)
	}
}

// UpdateStatus godoc
// @Summary Изменить статус
// @Description Любой статус из набора вида допустим из любого другого. Тот же статус ничего не меняет.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "users, jobs, companies, applications, blog/comments"
// @Param id path string true "ID"
// @Param request body dto.UpdateStatusRequest true "Новый статус"
// @Success 200 {object} models.Entity
// @Failure 400 {object} apperrors.ErrorResponse "Недопустимый статус"
// @Failure 404 {object} apperrors.ErrorResponse "Не найдено"
// @Router /admin/{kind}/{id}/status [put]
func (h *AdminHandler) UpdateStatus(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := h.GetAndAuthorizeUserID(c)
		if !ok {
			return
		}
		id, ok := RequireParam(c, "id")
		if !ok {
			return
		}

		var req dto.UpdateStatusRequest
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}

		entity, err := h.adminService.UpdateStatus(c.Request.Context(), h.GetDB(c), kind, id, &req, actorID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, entity)
	}
}

// BulkStatus godoc
// @Summary Пакетное изменение статуса
// @Description Ошибка одного id не прерывает остальные; каждый id попадает в succeeded или failed.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "users, jobs, companies, applications, blog/comments"
// @Param request body dto.BulkStatusRequest true "ID и статус"
// @Success 200 {object} dto.BulkActionResult
// @Failure 400 {object} apperrors.ErrorResponse "Пустой список или недопустимый статус"
// @Failure 429 {object} apperrors.ErrorResponse "Слишком много запросов"
// @Router /admin/{kind}/bulk-status [post]
func (h *AdminHandler) BulkStatus(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := h.GetAndAuthorizeUserID(c)
		if !ok {
			return
		}

		var req dto.BulkStatusRequest
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}

		result, err := h.bulkService.ApplyStatus(c.Request.Context(), h.GetDB(c), kind, req.IDs, req.Status, req.Reason, actorID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// BulkComments godoc
// @Summary Пакетно одобрить или отклонить комментарии
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkCommentsRequest true "ID комментариев"
// @Success 200 {object} dto.BulkActionResult
// @Failure 400 {object} apperrors.ErrorResponse "Пустой список"
// @Failure 429 {object} apperrors.ErrorResponse "Слишком много запросов"
// @Router /admin/blog/comments/bulk-approve [post]
// @Router /admin/blog/comments/bulk-reject [post]
func (h *AdminHandler) BulkComments(status models.CommentStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := h.GetAndAuthorizeUserID(c)
		if !ok {
			return
		}

		var req dto.BulkCommentsRequest
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}

		result, err := h.bulkService.ApplyStatus(c.Request.Context(), h.GetDB(c),
			models.KindBlogComment, req.CommentIDs, string(status), req.Reason, actorID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// DeleteEntity godoc
// @Summary Удалить сущность
// @Description Пользователи, отклики и комментарии удаляются мягко, остальные виды физически.
// @Tags admin
// @Security BearerAuth
// @Param kind path string true "Вид сущности"
// @Param id path string true "ID"
// @Success 204
// @Failure 404 {object} apperrors.ErrorResponse "Не найдено"
// @Router /admin/{kind}/{id} [delete]
func (h *AdminHandler) DeleteEntity(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := h.GetAndAuthorizeUserID(c)
		if !ok {
			return
		}
		id, ok := RequireParam(c, "id")
		if !ok {
			return
		}

		if err := h.adminService.DeleteEntity(c.Request.Context(), h.GetDB(c), kind, id, actorID); err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// CreateUser godoc
// @Summary Создать пользователя
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "Данные пользователя"
// @Success 201 {object} models.User
// @Failure 400 {object} apperrors.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} apperrors.ErrorResponse "Email уже занят"
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.adminService.CreateUser(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// CreateSkill godoc
// @Summary Создать навык
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSkillRequest true "Навык"
// @Success 201 {object} models.Skill
// @Failure 409 {object} apperrors.ErrorResponse "Навык уже существует"
// @Router /admin/skills [post]
func (h *AdminHandler) CreateSkill(c *gin.Context) {
	var req dto.CreateSkillRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	skill, err := h.adminService.CreateSkill(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, skill)
}

// CreateCategory godoc
// @Summary Создать категорию вакансий
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCategoryRequest true "Категория"
// @Success 201 {object} models.JobCategory
// @Failure 409 {object} apperrors.ErrorResponse "Имя или slug заняты"
// @Router /admin/categories [post]
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.adminService.CreateCategory(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GetStats godoc
// @Summary Статистика для дашборда
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardStats
// @Router /admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetDashboardStats(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListModerationLogs godoc
// @Summary Журнал модерации
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param kind query string false "Вид сущности"
// @Param entityId query string false "ID сущности"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[models.ModerationLog]
// @Router /admin/moderation-logs [get]
func (h *AdminHandler) ListModerationLogs(c *gin.Context) {
	var query dto.ModerationLogQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.adminService.ListModerationLogs(c.Request.Context(), h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ExportEntities godoc
// @Summary Выгрузка в CSV
// @Description Те же фильтры, что и у списка. Не больше 10000 строк.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Вид сущности"
// @Success 200 {object} dto.ExportResult
// @Router /admin/{kind}/export [get]
func (h *AdminHandler) ExportEntities(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query dto.ListQuery
		if !h.BindAndValidate_Query(c, &query) {
			return
		}

		result, err := h.exportService.Export(c.Request.Context(), h.GetDB(c), kind, query, middleware.GetUserID(c))
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

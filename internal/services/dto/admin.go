package dto

import (
	"jobportal_backend/internal/models"
)

// =======================
// Листинги
// =======================

// ListQuery - фильтр листинга для любого вида сущности.
// Поля Role, Company, JobID, UserID, BlogID применимы только к своим видам.
type ListQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Status   string `form:"status"`
	Search   string `form:"search" validate:"omitempty,max=200"`
	Role     string `form:"role" validate:"omitempty,is-user-role"`
	Company  string `form:"company"`
	JobID    string `form:"jobId"`
	UserID   string `form:"userId"`
	BlogID   string `form:"blogId"`
	DateFrom string `form:"dateFrom"`
	DateTo   string `form:"dateTo"`
}

// EntityFilters возвращает заданные фильтры, специфичные для вида
func (q ListQuery) EntityFilters() map[string]string {
	out := make(map[string]string)
	for key, value := range map[string]string{
		"role":    q.Role,
		"company": q.Company,
		"jobId":   q.JobID,
		"userId":  q.UserID,
		"blogId":  q.BlogID,
	} {
		if value != "" {
			out[key] = value
		}
	}
	return out
}

// Page - конверт постраничной выдачи
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPage считает totalPages как ceil(total/limit); data никогда не nil
func NewPage[T any](data []T, total int64, page, limit int) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// =======================
// Статусы
// =======================

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// BulkCommentsRequest - тело bulk-approve / bulk-reject
type BulkCommentsRequest struct {
	CommentIDs []string `json:"commentIds" validate:"dive,required"`
	Reason     string   `json:"reason" validate:"omitempty,max=1000"`
}

type BulkStatusRequest struct {
	IDs    []string `json:"ids" validate:"dive,required"`
	Status string   `json:"status" validate:"required"`
	Reason string   `json:"reason" validate:"omitempty,max=1000"`
}

// BulkActionResult - каждый входной id попадает ровно в одно из полей
type BulkActionResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

// StatusChange описывает одно изменение статуса для журнала и уведомлений
type StatusChange struct {
	Kind    models.EntityKind
	Entity  models.Entity
	From    string
	To      string
	Reason  string
	ActorID string
}

// =======================
// Создание
// =======================

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
	Role      string `json:"role" validate:"required,is-user-role"`
	Status    string `json:"status" validate:"omitempty,is-user-status"`
}

type CreateSkillRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=120"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// =======================
// Журнал, статистика, экспорт
// =======================

type ModerationLogQuery struct {
	Kind     string `form:"kind" validate:"omitempty,is-entity-kind"`
	EntityID string `form:"entityId"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type KindStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus,omitempty"`
}

// DashboardStats - ключ это вид сущности
type DashboardStats map[string]KindStats

type ExportResult struct {
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

package apperrors

import (
	"fmt"
	"net/http"
)

// Фабрики ошибок модерации. Сервисы переводят в них ошибки хранилища.

// ErrInvalidEntityStatus - статус не входит в набор допустимых для сущности (400)
func ErrInvalidEntityStatus(kind, status string) *AppError {
	return New(CodeInvalidStatus, kind,
		fmt.Sprintf("Status %q is not valid for %s", status, kind),
		http.StatusBadRequest,
	).WithDetails(map[string]string{"kind": kind, "status": status})
}

// ErrEntityNotFound - сущность не найдена (404)
func ErrEntityNotFound(kind, id string) *AppError {
	return New(CodeNotFound, kind,
		fmt.Sprintf("%s not found", kind),
		http.StatusNotFound,
	).WithDetails(map[string]string{"id": id})
}

// ErrStoreUnavailable - хранилище недоступно или не ответило вовремя (503)
func ErrStoreUnavailable(err error) *AppError {
	return Wrap(err, CodeStoreUnavailable, "store", "Storage is temporarily unavailable", http.StatusServiceUnavailable)
}

// ErrDuplicate - нарушение уникальности при создании (409)
func ErrDuplicate(kind, field string) *AppError {
	return New(CodeAlreadyExists, kind,
		fmt.Sprintf("%s with this %s already exists", kind, field),
		http.StatusConflict,
	).WithDetails(map[string]string{"field": field})
}

// ErrBulkLimit - пакет больше допустимого (400)
func ErrBulkLimit(max int) *AppError {
	return New(CodeValidationFailed, "bulk",
		fmt.Sprintf("Too many ids in one request, maximum is %d", max),
		http.StatusBadRequest,
	)
}

var ErrEmptyBulk = New(
	CodeValidationFailed,
	"bulk",
	"At least one id is required",
	http.StatusBadRequest,
)

var ErrRateLimited = New(
	CodeLimitExceeded,
	"rate_limit",
	"Too many bulk requests, try again later",
	http.StatusTooManyRequests,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrUserBanned = New(
	CodeForbidden,
	"auth",
	"Your account has been banned",
	http.StatusForbidden,
)

// ErrUnsupportedOperation - операция не применима к виду сущности (400)
func ErrUnsupportedOperation(kind, operation string) *AppError {
	return New(CodeInvalidOperation, kind,
		fmt.Sprintf("Operation %q is not supported for %s", operation, kind),
		http.StatusBadRequest,
	)
}

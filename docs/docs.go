// Package docs содержит описание API для Swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Вход администратора",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Сводка по сущностям",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/moderation-logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Журнал модерации",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "kind", "in": "query"},
                    {"type": "string", "name": "entityId", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/{kind}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Список сущностей с фильтрами",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "dateFrom", "in": "query"},
                    {"type": "string", "name": "dateTo", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/admin/{kind}/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Выгрузка в CSV",
                "parameters": [{"type": "string", "name": "kind", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ExportResult"}}}
            }
        },
        "/admin/{kind}/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Сущность по ID",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Удаление сущности",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/admin/{kind}/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Смена статуса",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/admin/{kind}/bulk-status": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Пакетная смена статуса",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.BulkStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BulkActionResult"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "apperrors.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/apperrors.AppError"}}
        },
        "apperrors.AppError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "domain": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "dto.AuthResponse": {
            "type": "object",
            "properties": {"accessToken": {"type": "string"}, "tokenType": {"type": "string"}, "expiresIn": {"type": "integer"}}
        },
        "dto.UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string"}, "reason": {"type": "string"}}
        },
        "dto.BulkStatusRequest": {
            "type": "object",
            "required": ["ids", "status"],
            "properties": {"ids": {"type": "array", "items": {"type": "string"}}, "status": {"type": "string"}, "reason": {"type": "string"}}
        },
        "dto.BulkActionResult": {
            "type": "object",
            "properties": {
                "succeeded": {"type": "array", "items": {"type": "string"}},
                "failed": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.ExportResult": {
            "type": "object",
            "properties": {"url": {"type": "string"}, "rows": {"type": "integer"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:4000",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Job Portal Admin API",
	Description:      "Административный API портала вакансий: модерация, пакетные операции, выгрузки.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

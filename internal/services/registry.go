package services

import (
	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/cache"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AdminService        AdminService
	BulkActionService   BulkActionService
	StatsService        StatsService
	ExportService       ExportService
	AuthService         AuthService
	NotificationService NotificationService
	EmailService        email.Provider
	Tokens              *auth.TokenManager
}

// Dependencies - внешние зависимости, из которых собираются сервисы
type Dependencies struct {
	Config  *config.Config
	Cache   cache.Cache
	Storage storage.Storage
	Email   email.Provider
	Tokens  *auth.TokenManager
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	adminCfg := deps.Config.Admin

	entityRepo := repositories.NewEntityRepository()
	logRepo := repositories.NewModerationLogRepository()
	userRepo := repositories.NewUserRepository()

	notificationService := NewNotificationService(deps.Email)
	statsService := NewStatsService(entityRepo, deps.Cache, adminCfg.StatsTTL, adminCfg.StoreTimeout)

	return &ServiceContainer{
		AdminService:        NewAdminService(entityRepo, logRepo, statsService, notificationService, adminCfg),
		BulkActionService:   NewBulkActionService(entityRepo, logRepo, statsService, notificationService, adminCfg),
		StatsService:        statsService,
		ExportService:       NewExportService(entityRepo, deps.Storage, adminCfg),
		AuthService:         NewAuthService(userRepo, entityRepo, deps.Tokens, adminCfg.StoreTimeout),
		NotificationService: notificationService,
		EmailService:        deps.Email,
		Tokens:              deps.Tokens,
	}
}

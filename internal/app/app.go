package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobportal_backend/database"
	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/cache"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/handlers"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/middleware"
	"jobportal_backend/internal/ratelimit"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/routes"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/storage"
	"jobportal_backend/internal/telemetry"
	"jobportal_backend/internal/validator"
	"jobportal_backend/internal/workers"
	"jobportal_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.Debug = cfg.IsDevelopment()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg.Database, cfg.IsDevelopment())
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	logger.Info("Database connected")

	redisClient := newRedisClient(ctx, cfg.Redis)

	deps, err := buildDependencies(ctx, cfg, redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", "error", err)
	}
	container := services.NewServiceContainer(deps)

	if err := container.AuthService.EnsureAdmin(ctx, gormDB, cfg.FirstAdminEmail, cfg.FirstAdminPassword); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	// интерфейс остается nil без Redis, иначе middleware не пропустит запрос
	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewTokenBucket(redisClient, cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond, time.Hour)
	} else {
		logger.Warn("Redis is not configured, bulk rate limiting disabled")
	}

	telemetry.Register()
	ginRouter := SetupRouter(cfg, gormDB, container, limiter)

	expiry := workers.NewJobWorker(gormDB, repositories.NewJobRepository(), container.BulkActionService,
		cfg.Workers.JobExpiryInterval, cfg.Workers.JobExpiryBatch)
	expiry.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	container.NotificationService.Wait()
	if err := container.EmailService.Close(); err != nil {
		logger.Warn("Failed to close email provider", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

// SetupRouter собирает gin с middleware и маршрутами
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, container *services.ServiceContainer, limiter ratelimit.Limiter) *gin.Engine {
	appHandlers := initializeHandlers(container)

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, routes.Options{
		Tokens:      container.Tokens,
		Users:       repositories.NewUserRepository(),
		BulkLimiter: limiter,
		Swagger:     cfg.IsDevelopment(),
	})
	return ginRouter
}

func buildDependencies(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (services.Dependencies, error) {
	storageInstance, err := storage.NewStorage(ctx, storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		return services.Dependencies{}, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	var statsCache cache.Cache
	if redisClient != nil {
		statsCache = cache.NewRedisCache(redisClient, "jobportal:")
	} else {
		statsCache = cache.NewMemoryCache(cfg.Admin.StatsTTL, 5*time.Minute)
		logger.Info("Using in-memory cache")
	}

	return services.Dependencies{
		Config:  cfg,
		Cache:   statsCache,
		Storage: storageInstance,
		Email:   newEmailProvider(cfg.Email),
		Tokens:  auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute),
	}, nil
}

func newEmailProvider(cfg config.EmailConfig) email.Provider {
	templates := email.NewDefaultTemplateManager()
	if !cfg.Enabled {
		logger.Warn("Email delivery disabled, notifications are only logged")
		return email.NewNoopProvider(templates)
	}

	provider := email.NewGomailProvider(&email.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		Timeout:   10 * time.Second,
	}, templates)
	if err := provider.Validate(); err != nil {
		logger.Warn("Invalid SMTP configuration, falling back to noop provider", "error", err)
		return email.NewNoopProvider(templates)
	}
	return provider
}

func newRedisClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, continuing without it", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("Redis connected", "addr", cfg.Addr)
	return client
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler: handlers.NewAuthHandler(baseHandler, container.AuthService),
		AdminHandler: handlers.NewAdminHandler(baseHandler,
			container.AdminService,
			container.BulkActionService,
			container.StatsService,
			container.ExportService,
		),
		FileHandler:   handlers.NewFileHandler(baseHandler, container.ExportService),
		SystemHandler: handlers.NewSystemHandler(baseHandler, telemetry.Handler()),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

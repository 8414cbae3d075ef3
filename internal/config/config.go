package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v2"
)

type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port int    `yaml:"port" env:"SERVER_PORT" env-default:"4000"`
	Env  string `yaml:"env" env:"SERVER_ENV" env-default:"development"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver" env:"DATABASE_DRIVER" env-default:"postgres"` // postgres, mysql, sqlite
	DSN          string `yaml:"url" env:"DATABASE_URL"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS" env-default:"20"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
	TTL    int    `yaml:"ttl" env:"JWT_TTL" env-default:"60"` // минуты
}

type AdminConfig struct {
	DefaultPageSize int           `yaml:"default_page_size" env:"ADMIN_DEFAULT_PAGE_SIZE" env-default:"20"`
	MaxPageSize     int           `yaml:"max_page_size" env:"ADMIN_MAX_PAGE_SIZE" env-default:"100"`
	MaxBulkIDs      int           `yaml:"max_bulk_ids" env:"ADMIN_MAX_BULK_IDS" env-default:"500"`
	BulkWorkers     int           `yaml:"bulk_workers" env:"ADMIN_BULK_WORKERS" env-default:"8"`
	StoreTimeout    time.Duration `yaml:"store_timeout" env:"ADMIN_STORE_TIMEOUT" env-default:"5s"`
	StatsTTL        time.Duration `yaml:"stats_ttl" env:"ADMIN_STATS_TTL" env-default:"60s"`
	ExportMaxRows   int           `yaml:"export_max_rows" env:"ADMIN_EXPORT_MAX_ROWS" env-default:"10000"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type RateLimitConfig struct {
	Capacity        int     `yaml:"capacity" env:"RATE_LIMIT_CAPACITY" env-default:"10"`
	RefillPerSecond float64 `yaml:"refill_per_second" env:"RATE_LIMIT_REFILL_PER_SECOND" env-default:"0.5"`
}

type EmailConfig struct {
	Enabled      bool   `yaml:"enabled" env:"EMAIL_ENABLED"`
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUsername string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"EMAIL_FROM" env-default:"no-reply@jobportal.local"`
	FromName     string `yaml:"from_name" env:"EMAIL_FROM_NAME" env-default:"Job Portal"`
}

type StorageConfig struct {
	Type      string `yaml:"type" env:"STORAGE_TYPE" env-default:"local"` // local, s3
	BasePath  string `yaml:"base_path" env:"STORAGE_BASE_PATH" env-default:"./exports"`
	BaseURL   string `yaml:"base_url" env:"STORAGE_BASE_URL" env-default:"/api/v1/files"`
	Bucket    string `yaml:"bucket" env:"STORAGE_BUCKET"`
	Region    string `yaml:"region" env:"STORAGE_REGION" env-default:"us-east-1"`
	AccessKey string `yaml:"access_key" env:"STORAGE_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"STORAGE_SECRET_KEY"`
	Endpoint  string `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
}

type WorkersConfig struct {
	JobExpiryInterval time.Duration `yaml:"job_expiry_interval" env:"WORKERS_JOB_EXPIRY_INTERVAL" env-default:"10m"`
	JobExpiryBatch    int           `yaml:"job_expiry_batch" env:"WORKERS_JOB_EXPIRY_BATCH" env-default:"200"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Admin     AdminConfig     `yaml:"admin"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Email     EmailConfig     `yaml:"email"`
	Storage   StorageConfig   `yaml:"storage"`
	Workers   WorkersConfig   `yaml:"workers"`

	FirstAdminEmail    string   `yaml:"first_admin_email" env:"FIRST_ADMIN_EMAIL"`
	FirstAdminPassword string   `yaml:"first_admin_password" env:"FIRST_ADMIN_PASSWORD"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

var AppConfig *Config

// Load читает YAML (если файл есть) и накладывает переменные окружения
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found, using environment only", path)
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// пачка истечения уходит в bulk-координатор и не может превышать его лимит
	if cfg.Admin.MaxBulkIDs > 0 && cfg.Workers.JobExpiryBatch > cfg.Admin.MaxBulkIDs {
		cfg.Workers.JobExpiryBatch = cfg.Admin.MaxBulkIDs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет то, без чего сервер не стартует
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database url is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if c.Admin.DefaultPageSize < 1 || c.Admin.MaxPageSize < c.Admin.DefaultPageSize {
		return fmt.Errorf("invalid page sizes: default=%d max=%d", c.Admin.DefaultPageSize, c.Admin.MaxPageSize)
	}
	if c.Admin.MaxBulkIDs < 1 || c.Admin.BulkWorkers < 1 {
		return errors.New("admin.max_bulk_ids and admin.bulk_workers must be positive")
	}
	if c.Workers.JobExpiryBatch < 1 || c.Workers.JobExpiryBatch > c.Admin.MaxBulkIDs {
		return fmt.Errorf("workers.job_expiry_batch must be in [1, %d], got %d", c.Admin.MaxBulkIDs, c.Workers.JobExpiryBatch)
	}
	switch c.Storage.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func LoadConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

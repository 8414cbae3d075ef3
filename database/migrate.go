package database

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobportal_backend/internal/config"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqliteDriverName - sqlite3 с lower(), понимающей не только ASCII
const sqliteDriverName = "sqlite3_unicode"

var registerSQLiteOnce sync.Once

func registerSQLiteDriver() {
	registerSQLiteOnce.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", unicodeLower, true)
			},
		})
	})
}

// unicodeLower заменяет встроенную lower(); NULL остаётся NULL
func unicodeLower(v interface{}) interface{} {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return strings.ToLower(string(s))
	default:
		return v
	}
}

// Open подключается к базе выбранным драйвером
func Open(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		registerSQLiteDriver()
		dialector = sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: cfg.DSN})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == "sqlite" {
		// in-memory база живет в пределах одного соединения
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Models - все таблицы, которыми управляет сервис
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Company{},
		&models.JobCategory{},
		&models.Job{},
		&models.Application{},
		&models.Skill{},
		&models.BlogComment{},
		&models.ModerationLog{},
	}
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	logger.Debug("automigrate completed", "tables", len(Models()))
	return nil
}

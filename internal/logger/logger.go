package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu  sync.RWMutex
	log *slog.Logger
)

// Init настраивает глобальный логгер под окружение:
// development - текст с debug, test - только warn и выше, остальное - JSON.
// LOG_LEVEL переопределяет уровень.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

// InitWithWriter - то же, что Init, но с произвольным выводом
func InitWithWriter(env string, w io.Writer) {
	level := slog.LevelInfo
	switch env {
	case "development":
		level = slog.LevelDebug
	case "test":
		level = slog.LevelWarn
	}
	if override, ok := parseLevel(os.Getenv("LOG_LEVEL")); ok {
		level = override
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: env == "development"}

	var handler slog.Handler
	switch env {
	case "development", "test":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler).With("service", "jobportal-admin")

	mu.Lock()
	log = l
	mu.Unlock()
	slog.SetDefault(l)
}

func parseLevel(value string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// GetLogger возвращает глобальный логгер; без Init работает как development
func GetLogger() *slog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l == nil {
		Init("development")
		mu.RLock()
		l = log
		mu.RUnlock()
	}
	return l
}

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }
func Info(msg string, args ...any)  { GetLogger().Info(msg, args...) }
func Warn(msg string, args ...any)  { GetLogger().Warn(msg, args...) }
func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

// Fatal пишет ошибку и завершает процесс
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// WorkerLog - итог прохода фоновой задачи
func WorkerLog(worker, operation string, processed int, err error) {
	l := GetLogger().With("worker", worker, "operation", operation, "processed", processed)
	if err != nil {
		l.Error("worker operation failed", "error", err.Error())
		return
	}
	if processed > 0 {
		l.Info("worker operation completed")
		return
	}
	l.Debug("worker operation completed")
}

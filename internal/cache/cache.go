package cache

import (
	"context"
	"time"
)

// Cache хранит JSON-сериализуемые значения с TTL
type Cache interface {
	// Get возвращает false, если ключа нет или он истек
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

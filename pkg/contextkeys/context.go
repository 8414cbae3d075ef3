package contextkeys

import (
	"context"

	"gorm.io/gorm"
)

type contextKey string

// DBContextKey - ключ *gorm.DB в context.Context и в gin.Context
const DBContextKey = contextKey("db")

// GinDBKey - тот же ключ строкой для gin.Context.Set/Get
const GinDBKey = string(DBContextKey)

// WithDB кладет в контекст соединение или транзакцию, которую подхватит DBMiddleware
func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, DBContextKey, db)
}

// DBFrom возвращает *gorm.DB из контекста, если он там есть
func DBFrom(ctx context.Context) (*gorm.DB, bool) {
	db, ok := ctx.Value(DBContextKey).(*gorm.DB)
	return db, ok && db != nil
}

package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrEntityNotFound       = errors.New("entity not found")
	ErrDuplicateEntity      = errors.New("entity already exists")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrUnsupportedFilter    = errors.New("unsupported filter")
	ErrUnsupportedOperation = errors.New("operation not supported for this kind")
)

// classifyError сводит ошибки gorm и драйверов к сентинелам пакета.
// Все, что не распознано, считается недоступностью хранилища.
func classifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrEntityNotFound),
		errors.Is(err, ErrDuplicateEntity),
		errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrUnsupportedFilter),
		errors.Is(err, ErrUnsupportedOperation):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrEntityNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrDuplicateEntity, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

// драйверы без TranslateError (или старые версии) отдают только текст
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

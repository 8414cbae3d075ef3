package repositories

import (
	"errors"

	"jobportal_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository - выборки пользователей, которые нужны вне общего EntityRepository
type UserRepository interface {
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByID(db *gorm.DB, id string) (*models.User, error)
	CountByRole(db *gorm.DB, role models.UserRole) (int64, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, classifyError(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, classifyError(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) CountByRole(db *gorm.DB, role models.UserRole) (int64, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return 0, classifyError(err)
	}
	return count, nil
}

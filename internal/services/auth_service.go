package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// EnsureAdmin создает первого администратора, если администраторов еще нет
	EnsureAdmin(ctx context.Context, db *gorm.DB, email, password string) error
}

type AuthServiceImpl struct {
	userRepo   repositories.UserRepository
	entityRepo repositories.EntityRepository
	tokens     *auth.TokenManager
	timeout    time.Duration
}

func NewAuthService(
	userRepo repositories.UserRepository,
	entityRepo repositories.EntityRepository,
	tokens *auth.TokenManager,
	timeout time.Duration,
) AuthService {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		entityRepo: entityRepo,
		tokens:     tokens,
		timeout:    timeout,
	}
}

// Login - вход в админку; токен выдается только активным администраторам
func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByEmail(db.WithContext(storeCtx), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, handleStoreError(models.KindUser, "", err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Role != models.UserRoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrUserBanned
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "admin logged in", "user_id", user.ID)
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	tx := db.WithContext(storeCtx)

	count, err := s.userRepo.CountByRole(tx, models.UserRoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
		IsVerified:   true,
	}
	if err := s.entityRepo.Create(tx, models.KindUser, admin); err != nil {
		return err
	}

	logger.CtxInfo(ctx, "first admin created", "email", email)
	return nil
}

package services

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/clipvault/clipvault/src/internal/auth"
	"github.com/clipvault/clipvault/src/internal/database/models"
)

// UserService handles account registration and credential checks
type UserService struct {
	db  *gorm.DB
	cfg *viper.Viper
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, cfg *viper.Viper) *UserService {
	return &UserService{db: db, cfg: cfg}
}

// Register creates an account with a bcrypt-hashed password
func (s *UserService) Register(username, email, password string) (*models.User, error) {
	var count int64
	err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing accounts: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks a username-or-email plus password pair. Both failure
// modes collapse into ErrInvalidCredentials so callers can't probe accounts.
func (s *UserService) Authenticate(usernameOrEmail, password string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "username = ? OR email = ?", usernameOrEmail, usernameOrEmail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, auth.ErrInvalidCredentials
	}

	return &user, nil
}

package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/intern-management-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSuperAdmin creates the super-admin account when no user with the
// given username exists. It never overwrites an existing account.
func SeedSuperAdmin(db *gorm.DB, username, password string) (*models.User, error) {
	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up super admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash super admin password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleSuperAdmin,
		Name:         "Super Admin",
		Email:        username + "@localhost",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create super admin: %w", err)
	}

	slog.Info("Super admin created", "username", username)
	return user, nil
}

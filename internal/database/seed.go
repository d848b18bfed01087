package database

import (
	"errors"

	"github.com/edukita/gametrack/internal/auth"
	"github.com/edukita/gametrack/internal/database/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedSuperAdmin creates the bootstrap SUPER_ADMIN account on first start.
// An existing account with the configured name is left untouched.
func SeedSuperAdmin(db *gorm.DB, name, password string) error {
	if name == "" || password == "" {
		zap.S().Warn("no bootstrap admin configured, skipping seed")
		return nil
	}

	_, err := GetUserByName(db, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Role:         models.RoleSuperAdmin,
		PasswordHash: hash,
	}
	if err := CreateUser(db, &admin); err != nil {
		return err
	}
	zap.S().Infof("seeded super admin account %q", name)
	return nil
}

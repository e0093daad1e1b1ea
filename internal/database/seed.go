package database

import (
	"errors"
	"fmt"

	"github.com/mkobayashi/discussion-board-api/internal/config"
	"github.com/mkobayashi/discussion-board-api/internal/models"
	"github.com/mkobayashi/discussion-board-api/pkg/auth"
	"gorm.io/gorm"
)

// SeedSuperuser creates the default superuser account if no user with
// the configured email exists yet.
func SeedSuperuser(cfg *config.Config) (*models.User, error) {
	var existing models.User
	err := DB.Where("email = ?", cfg.SuperuserEmail).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up superuser: %w", err)
	}

	hash, err := auth.HashPassword(cfg.SuperuserPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash superuser password: %w", err)
	}

	superuser := models.User{
		Name:         cfg.SuperuserName,
		Email:        cfg.SuperuserEmail,
		PasswordHash: hash,
		AuthLevel:    models.AuthLevelSuperuser,
	}
	if err := DB.Create(&superuser).Error; err != nil {
		return nil, fmt.Errorf("failed to create superuser: %w", err)
	}

	return &superuser, nil
}

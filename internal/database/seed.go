package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hugh/alumni-hub/internal/auth"
	"github.com/hugh/alumni-hub/internal/database/models"
	"github.com/hugh/alumni-hub/pkg/config"
	"gorm.io/gorm"
)

// SeedAdmin creates the bootstrap admin account when no admin exists yet.
// The admin is created pre-verified so it can log in immediately.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig, log *slog.Logger) error {
	var existing models.User
	err := db.Where("role = ?", models.RoleAdmin).First(&existing).Error
	if err == nil {
		log.Debug("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	if cfg.Password == "" {
		return errors.New("ADMIN_PASSWORD must be set to seed the admin user")
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := models.User{
		Email:         cfg.Email,
		PasswordHash:  hash,
		FullName:      cfg.FullName,
		Role:          models.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	log.Info("admin user created", "email", cfg.Email)
	return nil
}

package database

import (
	"LinkBoard-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs auto-migration for the domain models. Order matters
// because of the links foreign key on users.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	models := []interface{}{
		&domain.User{},
		&domain.Link{},
	}

	for _, model := range models {
		modelName := fmt.Sprintf("%T", model)
		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
	}

	log.Info("database auto-migration completed", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedAdmin creates the initial administrator account when the users table
// is empty. Existing installations are left untouched.
func SeedAdmin(db *gorm.DB, log *zap.Logger, username, passwordHash string) error {
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		log.Info("users already exist, skipping admin seeding", zap.Int64("existing_count", count))
		return nil
	}

	admin := domain.User{
		Username:     username,
		PasswordHash: &passwordHash,
		IsAdmin:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Error("failed to seed admin user", zap.Error(err))
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Info("seeded initial admin user", zap.String("username", username))
	return nil
}

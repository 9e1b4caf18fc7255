// Command createadmin creates an administrator account, or promotes an
// existing user, directly against the configured database.
package main

import (
	"LinkBoard-Backend/internal/auth"
	"LinkBoard-Backend/internal/config"
	"LinkBoard-Backend/internal/database"
	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/repository"
	"LinkBoard-Backend/internal/repository/postgres"
	"LinkBoard-Backend/pkg/logger"
	"LinkBoard-Backend/pkg/validate"
	"context"
	"errors"
	"flag"
	"time"

	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "", "admin username")
	password := flag.String("password", "", "admin password (required for new accounts)")
	flag.Parse()

	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	if *username == "" {
		log.Fatal("username is required")
	}

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db, log) }()

	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatal("failed to run database migrations", zap.Error(err))
	}

	storage := postgres.New(db, log)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := storage.GetUserByUsername(ctx, *username)
	switch {
	case err == nil:
		if existing.IsAdmin {
			log.Info("user is already an administrator", zap.String("username", existing.Username))
			return
		}
		promoted, err := storage.AdminToggleUserAdmin(ctx, existing.ID)
		if err != nil {
			log.Fatal("failed to promote user", zap.Error(err))
		}
		log.Info("promoted existing user to administrator",
			zap.Int64("user_id", promoted.ID),
			zap.String("username", promoted.Username))

	case errors.Is(err, repository.ErrUserNotFound):
		sanitized, err := validate.RegistrationCredentials(*username, *password)
		if err != nil {
			log.Fatal("invalid credentials", zap.Error(err))
		}

		hash, err := auth.NewPasswordService().HashPassword(*password)
		if err != nil {
			log.Fatal("failed to hash password", zap.Error(err))
		}

		admin := &domain.User{
			Username:     sanitized,
			PasswordHash: &hash,
			IsAdmin:      true,
		}
		if err := storage.CreateUser(ctx, admin); err != nil {
			log.Fatal("failed to create admin user", zap.Error(err))
		}
		log.Info("created administrator account",
			zap.Int64("user_id", admin.ID),
			zap.String("username", admin.Username))

	default:
		log.Fatal("failed to look up user", zap.Error(err))
	}
}

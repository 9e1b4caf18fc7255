// Package main provides the entry point for the LinkBoard bookmark service.
//
//	@title			LinkBoard API
//	@version		1.0.0
//	@description	A bookmark manager with date-grouped links, privacy controls, and Google sign-in.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8081
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"LinkBoard-Backend/internal/analytics"
	"LinkBoard-Backend/internal/auth"
	"LinkBoard-Backend/internal/config"
	"LinkBoard-Backend/internal/database"
	httpHandler "LinkBoard-Backend/internal/handler/http"
	"LinkBoard-Backend/internal/repository/postgres"
	"LinkBoard-Backend/internal/service"
	"LinkBoard-Backend/pkg/logger"
	"context"
	"fmt"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	_ "LinkBoard-Backend/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting LinkBoard backend", zap.String("env", cfg.Env))

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	passwordService := auth.NewPasswordService()

	if cfg.Database.SeedAdmin {
		if cfg.Database.AdminPassword == "" {
			log.Fatal("seed_admin enabled but admin_password is empty")
		}
		hash, err := passwordService.HashPassword(cfg.Database.AdminPassword)
		if err != nil {
			log.Fatal("failed to hash admin password", zap.Error(err))
		}
		if err := database.SeedAdmin(db, log, cfg.Database.AdminUsername, hash); err != nil {
			log.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	storage := postgres.New(db, log)
	linkService := service.NewLinkService(storage)

	// Access counts are persisted off the request path.
	processorConfig := analytics.DefaultConfig()
	processorConfig.WorkerCount = cfg.Analytics.WorkerCount
	processorConfig.BufferSize = cfg.Analytics.BufferSize
	processor := analytics.NewProcessor(storage, log, processorConfig)
	if err := processor.Start(); err != nil {
		log.Fatal("failed to start access processor", zap.Error(err))
	}

	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:     []byte(cfg.Auth.JWTSecret),
		TokenDuration: cfg.Auth.TokenDuration,
		Issuer:        cfg.Auth.Issuer,
	})

	oauthConfig := &auth.OAuthConfig{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		FrontendURL:  cfg.HTTPServer.FrontendURL,
	}

	apiServer := httpHandler.NewServer(
		storage,
		linkService,
		processor,
		jwtService,
		passwordService,
		oauthConfig,
		log,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:      apiServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", httpServer.Addr))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down LinkBoard backend...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Drain the access queue before closing the database.
	if err := processor.Stop(); err != nil {
		log.Error("failed to stop access processor", zap.Error(err))
	}
}

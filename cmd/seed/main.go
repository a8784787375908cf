package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"coworking/internal/config"
	"coworking/internal/db"
	"coworking/internal/log"
	"coworking/internal/repository"
	"coworking/internal/service"
)

func main() {
	adminEmail := flag.String("admin-email", "", "e-mail of the admin account to create or promote")
	adminUsername := flag.String("admin-username", "admin", "username for a newly created admin account")
	adminPassword := flag.String("admin-password", "", "password to set on the admin account")
	deactivate := flag.String("deactivate", "", "e-mail of a user to deactivate")
	activate := flag.String("activate", "", "e-mail of a user to reactivate")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := log.New(cfg)

	if *adminEmail == "" && *deactivate == "" && *activate == "" {
		flag.Usage()
		os.Exit(2)
	}

	gormDB, err := db.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.Migrate(gormDB, false); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	users := service.NewUserService(repository.NewUserRepository(gormDB))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, logger, users, *adminEmail, *adminUsername, *adminPassword, *deactivate, *activate); err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
	logger.Info().Msg("seed completed")
}

func run(ctx context.Context, logger zerolog.Logger, users service.UserService, adminEmail, adminUsername, adminPassword, deactivate, activate string) error {
	if adminEmail != "" {
		if adminPassword == "" {
			return fmt.Errorf("-admin-password is required with -admin-email")
		}
		admin, err := users.EnsureAdmin(ctx, adminEmail, adminUsername, adminPassword)
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		logger.Info().Uint("id", admin.ID).Str("email", admin.Email).Msg("admin account ready")
	}

	if deactivate != "" {
		user, err := users.SetActive(ctx, deactivate, false)
		if err != nil {
			return fmt.Errorf("deactivate %s: %w", deactivate, err)
		}
		logger.Info().Uint("id", user.ID).Str("email", user.Email).Msg("user deactivated")
	}

	if activate != "" {
		user, err := users.SetActive(ctx, activate, true)
		if err != nil {
			return fmt.Errorf("activate %s: %w", activate, err)
		}
		logger.Info().Uint("id", user.ID).Str("email", user.Email).Msg("user activated")
	}
	return nil
}

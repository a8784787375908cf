package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"coworking/docs"
	"coworking/internal/auth"
	"coworking/internal/cache"
	"coworking/internal/config"
	"coworking/internal/db"
	"coworking/internal/handler"
	"coworking/internal/log"
	"coworking/internal/repository"
	"coworking/internal/router"
	"coworking/internal/service"
)

// @title Coworking Reservations API
// @version 1.0
// @description Coworking space reservations with JWT authentication and soft-cancellable bookings.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg)

	gormDB, err := db.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database init failed")
	}
	if cfg.Database.Reset {
		logger.Warn().Msg("RESET_DB set, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.Database.Reset); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	cacheClient := cache.New(cfg.Redis)
	if cacheClient.Enabled() {
		if err := cacheClient.Ping(context.Background()); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, serving from database")
		}
	}

	tokens, err := auth.NewTokenService(cfg.Security)
	if err != nil {
		logger.Fatal().Err(err).Msg("token service init failed")
	}
	logger.Info().Str("algorithm", cfg.Security.Algorithm).Dur("access_token_ttl", tokens.DefaultTTL()).Msg("token service ready")

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	reservationRepo := repository.NewReservationRepository(gormDB)

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens)
	reservationService := service.NewReservationService(reservationRepo, cacheClient)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, logger, auth.NewIdentityResolver(tokens, userRepo), router.Handlers{
		Health:      handler.NewHealthHandler(gormDB, cacheClient, cfg.Environment),
		Auth:        handler.NewAuthHandler(authService),
		User:        handler.NewUserHandler(),
		Reservation: handler.NewReservationHandler(reservationService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info().Str("url", swaggerURL(cfg)).Msg("swagger documentation available")

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info().Str("addr", addr).Msg("http server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, e, gormDB, cacheClient)
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}

func waitForShutdown(logger zerolog.Logger, e *echo.Echo, gormDB *gorm.DB, cacheClient *cache.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := e.Close(); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error().Err(err).Msg("database close error")
		}
	}
	if err := cacheClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}

package router

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"coworking/internal/auth"
	"coworking/internal/config"
	"coworking/internal/handler"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Reservation *handler.ReservationHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger zerolog.Logger,
	resolver *auth.IdentityResolver,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/", h.Health.Root)
	e.GET("/health", h.Health.Health)
	e.GET("/db-test", h.Health.DBTest)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	var credentialMiddleware []echo.MiddlewareFunc
	if limiter := loginRateLimiter(cfg.Security.LoginRateLimit, cfg.Security.LoginRateBurst); limiter != nil {
		credentialMiddleware = append(credentialMiddleware, limiter)
	}
	e.POST("/register", h.Auth.Register, credentialMiddleware...)
	e.POST("/login", h.Auth.Login, credentialMiddleware...)

	// Secured routes
	requireAuth := authenticate(resolver, logger)

	e.GET("/me", h.User.Me, requireAuth)

	e.GET("/reservations", h.Reservation.ListReservations, requireAuth)
	e.POST("/reservations", h.Reservation.CreateReservation, requireAuth)
	e.GET("/reservations/:id", h.Reservation.GetReservation, requireAuth)
	e.PUT("/reservations/:id", h.Reservation.UpdateReservation, requireAuth)
	e.DELETE("/reservations/:id", h.Reservation.CancelReservation, requireAuth)
	e.POST("/reservations/:id/reactivate", h.Reservation.ReactivateReservation, requireAuth)
}

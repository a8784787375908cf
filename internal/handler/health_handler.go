package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"coworking/internal/cache"
	"coworking/internal/db"
)

// HealthHandler serves liveness and dependency probes.
type HealthHandler struct {
	db          *gorm.DB
	cache       *cache.Client
	environment string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(gormDB *gorm.DB, cacheClient *cache.Client, environment string) *HealthHandler {
	return &HealthHandler{db: gormDB, cache: cacheClient, environment: environment}
}

// Root godoc
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Coworking Reservations API is running",
	})
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	status, code := "healthy", http.StatusOK
	database := "ok"
	if err := db.Ping(h.db); err != nil {
		database = "error"
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	cacheState := "disabled"
	if h.cache.Enabled() {
		cacheState = "ok"
		if err := h.cache.Ping(c.Request().Context()); err != nil {
			// the cache is optional; report but stay healthy
			cacheState = "error"
		}
	}

	return c.JSON(code, map[string]string{
		"status":      status,
		"database":    database,
		"cache":       cacheState,
		"environment": h.environment,
	})
}

// DBTest godoc
// @Summary Run a trivial query against the database
// @Tags health
// @Produce json
// @Description Always answers 200; a failure is reported in the body.
// @Success 200 {object} map[string]string
// @Router /db-test [get]
func (h *HealthHandler) DBTest(c echo.Context) error {
	if err := h.db.WithContext(c.Request().Context()).Exec("SELECT 1").Error; err != nil {
		return c.JSON(http.StatusOK, map[string]string{
			"database": "error",
			"details":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"database": "connected"})
}

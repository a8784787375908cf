package router

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"coworking/internal/auth"
	"coworking/internal/errors"
	"coworking/internal/handler"
)

const bearerPrefix = "Bearer "

// requestLogger logs one line per request through zerolog.
func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Status >= http.StatusInternalServerError {
				event = logger.Error().Err(v.Error)
			} else if v.Status >= http.StatusBadRequest {
				event = logger.Warn()
			}

			event.
				Str("method", v.Method).
				Str("path", v.URI).
				Str("client_ip", v.RemoteIP).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	})
}

// loginRateLimiter throttles credential endpoints per client IP. It returns
// nil when limiting is disabled.
func loginRateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return nil
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many requests",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

// authenticate resolves the bearer token to an active user and stores it under
// handler.CurrentUserKey.
func authenticate(resolver *auth.IdentityResolver, logger zerolog.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: handler.CurrentUserKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return resolver.Resolve(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			switch {
			case stderrors.Is(err, errors.ErrUserInactive):
				return handler.RespondError(errors.ErrUserInactive)
			case errors.IsAuthFailure(err):
				logRejectedToken(c, resolver.Tokens(), logger, err)
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return handler.RespondError(err)
			case stderrors.As(err, &extractErr), stderrors.Is(err, echojwt.ErrJWTMissing):
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "not authenticated",
					Code:  "NOT_AUTHENTICATED",
				})
			default:
				return handler.RespondError(err)
			}
		},
	})
}

// logRejectedToken records the claimed subject of a rejected token, if any.
func logRejectedToken(c echo.Context, tokens *auth.TokenService, logger zerolog.Logger, err error) {
	raw := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), bearerPrefix)
	event := logger.Warn().Err(err).Str("path", c.Request().URL.Path)
	if claims := tokens.DecodeUnsafe(raw); claims != nil {
		if sub, ok := claims["sub"].(string); ok {
			event = event.Str("claimed_sub", sub)
		}
	}
	event.Msg("bearer token rejected")
}

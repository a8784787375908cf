package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"coworking/internal/errors"
	"coworking/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest represents a login request. It binds from an OAuth2 password
// form, where username carries the e-mail, or from JSON.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Identifier returns the e-mail when given, otherwise the username.
func (r LoginRequest) Identifier() string {
	if email := strings.TrimSpace(r.Email); email != "" {
		return email
	}
	return strings.TrimSpace(r.Username)
}

// TokenResponse represents a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}

	if err := c.Validate(&req); err != nil {
		return RespondError(err)
	}

	user, err := h.authService.Register(c.Request().Context(), strings.TrimSpace(req.Email), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return RespondError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Log in and obtain a bearer token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param username formData string false "E-mail or username"
// @Param password formData string true "Password"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}

	if err := c.Validate(&req); err != nil {
		return RespondError(err)
	}
	identifier := req.Identifier()
	if identifier == "" {
		return fieldError("username", "is required")
	}

	accessToken, _, err := h.authService.Login(c.Request().Context(), identifier, req.Password)
	if err != nil {
		if stderrors.Is(err, errors.ErrInvalidCredentials) {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		return RespondError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	})
}

// RespondError converts a domain error into the JSON error envelope. The
// original error is kept as the internal cause for request logging.
func RespondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func invalidBody(err error) error {
	message := err.Error()
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		if internal := he.Internal; internal != nil {
			message = internal.Error()
		} else {
			message = fmt.Sprint(he.Message)
		}
	}
	return RespondError(errors.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body", "VALIDATION_ERROR").
		WithDetails(errors.FieldError{Field: "body", Message: message}))
}

func fieldError(field, message string) error {
	return RespondError(errors.NewHTTPError(http.StatusUnprocessableEntity, "validation failed", "VALIDATION_ERROR").
		WithDetails(errors.FieldError{Field: field, Message: message}))
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"coworking/internal/errors"
	"coworking/internal/model"
)

// CurrentUserKey is the echo context key under which the authenticated user is stored.
const CurrentUserKey = "current_user"

// CurrentUser returns the user resolved by the authentication middleware.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(CurrentUserKey).(*model.User)
	return user, ok && user != nil
}

func requireUser(c echo.Context) (*model.User, error) {
	user, ok := CurrentUser(c)
	if !ok {
		return nil, RespondError(errors.ErrInvalidToken)
	}
	return user, nil
}

// UserHandler serves the caller's own account.
type UserHandler struct{}

// NewUserHandler creates a user handler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

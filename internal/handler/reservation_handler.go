package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"coworking/internal/model"
	"coworking/internal/service"
)

// timestampLayouts are tried in order; layouts without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Timestamp accepts RFC 3339 as well as offset-less ISO 8601 date-times.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", raw)
}

// ReservationHandler handles reservation endpoints.
type ReservationHandler struct {
	reservationService service.ReservationService
}

// NewReservationHandler creates a new reservation handler.
func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// CreateReservationRequest represents a booking request.
type CreateReservationRequest struct {
	SpaceName     string     `json:"space_name" validate:"required"`
	StartDatetime *Timestamp `json:"start_datetime" validate:"required" swaggertype:"string" format:"date-time"`
	EndDatetime   *Timestamp `json:"end_datetime" validate:"required" swaggertype:"string" format:"date-time"`
}

// UpdateReservationRequest is a partial update; omitted fields are kept.
type UpdateReservationRequest struct {
	SpaceName     *string    `json:"space_name,omitempty"`
	StartDatetime *Timestamp `json:"start_datetime,omitempty" swaggertype:"string" format:"date-time"`
	EndDatetime   *Timestamp `json:"end_datetime,omitempty" swaggertype:"string" format:"date-time"`
}

func (r UpdateReservationRequest) toInput() service.UpdateReservationInput {
	var input service.UpdateReservationInput
	if r.SpaceName != nil {
		space := model.SpaceName(*r.SpaceName)
		input.SpaceName = &space
	}
	if r.StartDatetime != nil {
		input.StartDatetime = &r.StartDatetime.Time
	}
	if r.EndDatetime != nil {
		input.EndDatetime = &r.EndDatetime.Time
	}
	return input
}

// ListReservations godoc
// @Summary List the caller's reservations
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param include_cancelled query bool false "Include cancelled reservations"
// @Success 200 {array} model.Reservation
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /reservations [get]
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	includeCancelled := false
	if raw := c.QueryParam("include_cancelled"); raw != "" {
		includeCancelled, err = strconv.ParseBool(raw)
		if err != nil {
			return fieldError("include_cancelled", "must be a boolean")
		}
	}

	reservations, err := h.reservationService.List(c.Request().Context(), user.ID, includeCancelled)
	if err != nil {
		return RespondError(err)
	}
	return c.JSON(http.StatusOK, reservations)
}

// CreateReservation godoc
// @Summary Book a space
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReservationRequest true "Reservation data"
// @Success 201 {object} model.Reservation
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return RespondError(err)
	}

	reservation, err := h.reservationService.Create(c.Request().Context(), user.ID, service.CreateReservationInput{
		SpaceName:     model.SpaceName(req.SpaceName),
		StartDatetime: req.StartDatetime.Time,
		EndDatetime:   req.EndDatetime.Time,
	})
	if err != nil {
		return RespondError(err)
	}
	return c.JSON(http.StatusCreated, reservation)
}

// GetReservation godoc
// @Summary Get one of the caller's reservations
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} model.Reservation
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c echo.Context) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}

	reservation, err := h.reservationService.Get(c.Request().Context(), id, user.ID)
	if err != nil {
		return RespondError(err)
	}
	return c.JSON(http.StatusOK, reservation)
}

// UpdateReservation godoc
// @Summary Patch one of the caller's reservations
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Param request body UpdateReservationRequest true "Fields to change"
// @Success 200 {object} model.Reservation
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /reservations/{id} [put]
func (h *ReservationHandler) UpdateReservation(c echo.Context) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}

	var req UpdateReservationRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}

	reservation, err := h.reservationService.Update(c.Request().Context(), id, user.ID, req.toInput())
	if err != nil {
		return RespondError(err)
	}
	return c.JSON(http.StatusOK, reservation)
}

// CancelReservation godoc
// @Summary Cancel one of the caller's reservations
// @Description Soft-cancels the reservation. Cancelling twice returns the cancelled reservation again.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} model.Reservation
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}

	reservation, err := h.reservationService.Cancel(c.Request().Context(), id, user.ID)
	if err != nil {
		return RespondError(err)
	}
	return c.JSON(http.StatusOK, reservation)
}

// ReactivateReservation godoc
// @Summary Reactivate a cancelled reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} model.Reservation
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reservations/{id}/reactivate [post]
func (h *ReservationHandler) ReactivateReservation(c echo.Context) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}

	reservation, err := h.reservationService.Reactivate(c.Request().Context(), id, user.ID)
	if err != nil {
		return RespondError(err)
	}
	return c.JSON(http.StatusOK, reservation)
}

func userAndID(c echo.Context) (*model.User, uint, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, 0, err
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return nil, 0, fieldError("id", "must be a positive integer")
	}
	return user, uint(id), nil
}

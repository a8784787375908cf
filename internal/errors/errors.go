package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when request fields are malformed or missing.
	ErrValidation = errors.New("validation error")
	// ErrUnknownSpace is returned when a space name is not bookable.
	ErrUnknownSpace = errors.New("unknown space")
	// ErrInvalidTimeRange is returned when a reservation does not end after it starts.
	ErrInvalidTimeRange = errors.New("end_datetime must be after start_datetime")

	// ErrEmailAlreadyRegistered is returned when registering an e-mail that is taken.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrUsernameTaken is returned when registering a username that is taken.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned when login identifier or password is wrong.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInvalidToken is returned for malformed, tampered or incomplete tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a token is past its expiry instant.
	ErrTokenExpired = errors.New("token expired")
	// ErrUserNotFound is returned when a token subject has no user record.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserInactive is returned when the acting user has been deactivated.
	ErrUserInactive = errors.New("inactive user")

	// ErrReservationNotFound is returned when a reservation is absent or owned by someone else.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrReservationNotCancelled is returned when reactivating a reservation that is not cancelled.
	ErrReservationNotCancelled = errors.New("reservation not found or not cancelled")
)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// WithDetails attaches per-field validation details.
func (e *HTTPError) WithDetails(details ...FieldError) *HTTPError {
	e.Details = append(e.Details, details...)
	return e
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. The message keeps any
// context wrapped around the sentinel, e.g. which token claim was missing.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, ErrUnknownSpace):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "UNKNOWN_SPACE").
			WithDetails(FieldError{Field: "space_name", Message: err.Error()})
	case errors.Is(err, ErrInvalidTimeRange):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "INVALID_TIME_RANGE").
			WithDetails(FieldError{Field: "end_datetime", Message: err.Error()})
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrEmailAlreadyRegistered):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_ALREADY_REGISTERED")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_EXPIRED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrUserInactive):
		return NewHTTPError(http.StatusForbidden, err.Error(), "INACTIVE_USER")
	case errors.Is(err, ErrReservationNotCancelled):
		return NewHTTPError(http.StatusNotFound, err.Error(), "RESERVATION_NOT_CANCELLED")
	case errors.Is(err, ErrReservationNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "RESERVATION_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// IsAuthFailure reports whether err should be answered with a 401.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInvalidCredentials)
}

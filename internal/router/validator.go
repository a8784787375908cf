package router

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"coworking/internal/errors"
)

// CustomValidator wraps validator for Echo and reports failures as a 422 with
// one detail per offending field.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a validator that names fields by their JSON key.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	httpErr := errors.NewHTTPError(http.StatusUnprocessableEntity, "validation failed", "VALIDATION_ERROR")
	for _, fe := range fieldErrs {
		httpErr.WithDetails(errors.FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return httpErr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

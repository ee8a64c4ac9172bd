package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxHostLength bounds peer host names (RFC 1035 full name length)
	MaxHostLength = 253
	// MaxRows bounds one record document
	MaxRows = 10000
)

// ErrNil is returned when a nil value is validated
var ErrNil = errors.New("value cannot be nil")

func init() {
	validate = validator.New()
	// the "flag" tag accepts the exact literals the upstream feeds use for booleans
	_ = validate.RegisterValidation("flag", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", "true", "false":
			return true
		}
		return false
	})
}

// Struct validates v using its `validate` struct tags and returns the first
// failure in a user-friendly format.
func Struct(v any) error {
	if v == nil {
		return ErrNil
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateRowCount validates the size of one record document
func ValidateRowCount(n int) error {
	if n > MaxRows {
		return fmt.Errorf("row count must not exceed %d, got %d", MaxRows, n)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %q", field, param, fmt.Sprint(e.Value()))
		case "flag":
			return fmt.Errorf("%s: must be \"true\" or \"false\", got %q", field, fmt.Sprint(e.Value()))
		case "hostname_port":
			return fmt.Errorf("%s: must be host:port, got %q", field, fmt.Sprint(e.Value()))
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}

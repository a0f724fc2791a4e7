// Package validation wraps go-playground/validator with the custom rules the
// site's input structs use, and maps tag failures to readable messages.
package validation

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
)

var handleRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{2,63}$`)

// Portuguese postal codes, e.g. 1000-205.
var postalCodeRegex = regexp.MustCompile(`^\d{4}-\d{3}$`)

func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("handle", validateHandle)
	_ = v.RegisterValidation("postalcode_pt", validatePostalCodePT)
	_ = v.RegisterValidation("future", validateFutureDate)
	return v
}

func validateHandle(fl validator.FieldLevel) bool {
	return handleRegex.MatchString(fl.Field().String())
}

func validatePostalCodePT(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || postalCodeRegex.MatchString(s)
}

func validateFutureDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && t.After(time.Now())
}

// Validate runs struct validation and converts the first failure into a
// classified validation error.
func Validate(ctx context.Context, v *validator.Validate, structure any) error {
	err := v.StructCtx(ctx, structure)
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return domain.WrapError(domain.KindValidation, "invalid input", err)
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = "field is required"
	case "email":
		msg = "invalid email address"
	case "handle":
		msg = "handle may use lowercase letters, digits, dots, dashes and underscores"
	case "postalcode_pt":
		msg = "postal code must look like 1000-205"
	case "future":
		msg = "date must be in the future"
	case "eqfield":
		msg = "must match " + ve.Param()
	case "min":
		msg = "value below minimum"
	case "max":
		msg = "value above maximum"
	case "gte":
		msg = "value below minimum"
	case "lte":
		msg = "value above maximum"
	default:
		msg = "invalid value"
	}
	return domain.WrapError(domain.KindValidation, ve.Field()+": "+msg, err)
}

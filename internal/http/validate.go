package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/spacehub/internal/availability"
)

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := availability.ParseSlot(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("dateiso", func(fl validator.FieldLevel) bool {
		_, err := availability.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// validateRequest runs struct tag validation and flattens failures into a
// field keyed message map suitable for an errorResponse.
func validateRequest(payload any) map[string]string {
	err := requestValidator.Struct(payload)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return map[string]string{"request": err.Error()}
	}

	fields := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		fields[requestFieldName(fe)] = requestFieldMessage(fe)
	}
	return fields
}

func requestFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "request"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func requestFieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "hhmm":
		return "must be an HH:MM time"
	case "dateiso":
		return "must be a YYYY-MM-DD date"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

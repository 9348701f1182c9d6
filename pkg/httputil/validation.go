package httputil

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trackshelf/trackshelf-backend/pkg/errors"
	"github.com/trackshelf/trackshelf-backend/pkg/i18n"
)

// Validator wraps go-playground/validator. Field names in error details are
// taken from the json tags so clients see the names they sent.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator. Each handler set owns its own instance
// so custom tags can close over per-service configuration.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Register adds a custom validation tag
func (v *Validator) Register(tag string, fn func(value string) bool) error {
	return v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

// Struct validates s and returns a Validation AppError with one entry per field
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.BadRequest(err.Error())
	}

	details := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		details[fieldPath(e)] = formatValidationError(e)
	}
	return errors.Validation(details)
}

// fieldPath drops the top-level struct name: "items[0].name" instead of "replaceItemsRequest.items[0].name".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func formatValidationError(e validator.FieldError) string {
	key := "validation." + e.Tag()
	msg := i18n.T(key, map[string]string{"param": e.Param()})
	if msg == key {
		return i18n.T("validation.invalid")
	}
	return msg
}

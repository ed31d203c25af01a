// Package validation checks experiment configuration, combining struct tags
// (go-playground/validator) with fluent cross-field rules.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates v against its `validate` tags and reports the first
// failure as "Field: reason".
func Struct(v any) error {
	if v == nil {
		return errors.New("validation: nil value")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), namespaceRoot(e.Namespace()))
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: %v is not one of [%s]", field, e.Value(), param)
		case "unique":
			return fmt.Errorf("%s: contains duplicates", field)
		case "required_with":
			return fmt.Errorf("%s: required when %s is set", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}

// namespaceRoot returns the leading "Type." of a validator namespace so
// messages read "Output.Format" rather than "Config.Output.Format".
func namespaceRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[:i+1]
	}
	return ""
}

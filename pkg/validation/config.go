package validation

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ConfigValidator checks rules that struct tags cannot express, such as
// cross-field constraints. Every failed rule is kept and reported together.
type ConfigValidator struct {
	errors []error
	name   string // prefix for field names
}

// NewConfigValidator returns an empty validator for the named config.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{
		name:   configName,
		errors: make([]error, 0),
	}
}

func (cv *ConfigValidator) fail(field, format string, args ...any) {
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %s", cv.name, field, fmt.Sprintf(format, args...)))
}

// Required fails when value is empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.fail(field, "must be set")
	}
	return cv
}

// MaxInt fails when value is above max.
func (cv *ConfigValidator) MaxInt(field string, value, max int) *ConfigValidator {
	if value > max {
		cv.fail(field, "%d is above the limit of %d", value, max)
	}
	return cv
}

// MinDuration fails when value is below min.
func (cv *ConfigValidator) MinDuration(field string, value, min time.Duration) *ConfigValidator {
	if value < min {
		cv.fail(field, "%v is shorter than %v", value, min)
	}
	return cv
}

// SubsetOf validates that values is non-empty, free of duplicates, and drawn
// from allowed.
func (cv *ConfigValidator) SubsetOf(field string, values, allowed []string) *ConfigValidator {
	if len(values) == 0 {
		cv.fail(field, "at least one value is required")
		return cv
	}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !slices.Contains(allowed, v) {
			cv.fail(field, "value %q must be one of %v", v, allowed)
		}
		if seen[v] {
			cv.fail(field, "value %q listed twice", v)
		}
		seen[v] = true
	}
	return cv
}

// Custom records the error returned by fn, wrapped with the field name.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// When runs validations only if condition holds.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// HasErrors reports whether any rule failed.
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

// Errors returns the failures in the order they were found.
func (cv *ConfigValidator) Errors() []error {
	return cv.errors
}

// Validate returns nil, the single error, or all errors joined. Errors wrapped
// by Custom stay visible to errors.Is.
func (cv *ConfigValidator) Validate() error {
	switch len(cv.errors) {
	case 0:
		return nil
	case 1:
		return cv.errors[0]
	}
	return fmt.Errorf("%s validation failed with %d errors: %w", cv.name, len(cv.errors), errors.Join(cv.errors...))
}

// DefaultOrInt returns value when positive and fallback otherwise.
func DefaultOrInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

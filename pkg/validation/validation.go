// Package validation wraps go-playground/validator with the project's custom
// tags and converts its errors into domain errors keyed by JSON field path.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	dErrors "onboard/pkg/domain-errors"
)

// DateLayout is the calendar date format accepted for dates without a time.
const DateLayout = "2006-01-02"

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{6,18}[0-9]$`)
	// Nine digits, optionally grouped 3-2-4 with dashes or spaces.
	ssnPattern = regexp.MustCompile(`^\d{3}[- ]?\d{2}[- ]?\d{4}$`)
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("ssn", func(fl validator.FieldLevel) bool {
		return ssnPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp and
// returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

// Validate validates a struct and returns a domain error naming the first
// failing field.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// Fields validates a struct and returns every failure as a FieldError whose
// path uses JSON names, e.g. "emergencyContacts[1].phone".
func Fields(req any) []dErrors.FieldError {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []dErrors.FieldError{{Field: "", Message: "invalid request body"}}
	}
	out := make([]dErrors.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, dErrors.FieldError{Field: fieldPath(fe), Message: describe(fe)})
	}
	return out
}

// ErrorMessage converts a validator error into a human-readable message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}
	fe := validationErrs[0]
	return fieldPath(fe) + " " + describe(fe)
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "phone":
		return "must be a valid phone number"
	case "ssn":
		return "must be a valid SSN (123-45-6789)"
	case "date":
		return "must be a date (YYYY-MM-DD)"
	case "url":
		return "must be a valid url"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "notblank":
		return "must not be blank"
	default:
		return "is invalid"
	}
}

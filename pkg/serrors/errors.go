package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error that can be mapped to an API envelope or a
// locale key by outer layers.
type BaseError struct {
	Code      string
	Message   string
	LocaleKey string
}

func (e *BaseError) Error() string {
	return e.Message
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

// ValidationErrors maps a field name to its validation failure.
type ValidationErrors map[string]*BaseError

func (v ValidationErrors) Error() string {
	for field, err := range v {
		return fmt.Sprintf("%s: %s", field, err.Message)
	}
	return "validation failed"
}

// Fields returns a plain field -> message map for API responses.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for field, err := range v {
		out[field] = err.Message
	}
	return out
}

func NewFieldRequiredError(field, localeKey string) *BaseError {
	return &BaseError{
		Code:      "FIELD_REQUIRED",
		Message:   fmt.Sprintf("%s is required", field),
		LocaleKey: localeKey,
	}
}

func NewInvalidFieldError(field, localeKey string) *BaseError {
	return &BaseError{
		Code:      "FIELD_INVALID",
		Message:   fmt.Sprintf("%s is invalid", field),
		LocaleKey: localeKey,
	}
}

// ProcessValidatorErrors converts go-playground validator failures into
// coded errors keyed by struct field. getFieldLocaleKey may return "" when
// no locale entry exists for the field.
func ProcessValidatorErrors(errs validator.ValidationErrors, getFieldLocaleKey func(field string) string) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, err := range errs {
		field := err.Field()
		localeKey := ""
		if getFieldLocaleKey != nil {
			localeKey = getFieldLocaleKey(field)
		}
		switch err.Tag() {
		case "required":
			out[field] = NewFieldRequiredError(field, localeKey)
		default:
			out[field] = NewInvalidFieldError(field, localeKey)
		}
	}
	return out
}

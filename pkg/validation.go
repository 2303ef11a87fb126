package pkg

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/multierr"
)

// FieldError is a validation failure of a single request field.
type FieldError struct {
	Field   string
	Message string
}

func NewFieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return e.Message
}

// ValidationError carries every field error found while validating one request.
type ValidationError struct {
	errs error
}

// NewValidationError wraps errors accumulated with multierr; nil in, nil out.
func NewValidationError(errs error) error {
	if errs == nil {
		return nil
	}
	return &ValidationError{errs: errs}
}

func (e *ValidationError) Error() string {
	var messages []string
	for _, err := range multierr.Errors(e.errs) {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, ", ")
}

func (e *ValidationError) Unwrap() []error {
	return multierr.Errors(e.errs)
}

// Fields maps a field name to its first error message.
func (e *ValidationError) Fields() map[string]string {
	fields := map[string]string{}
	for _, err := range multierr.Errors(e.errs) {
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) {
			continue
		}
		if _, ok := fields[fieldErr.Field]; !ok {
			fields[fieldErr.Field] = fieldErr.Message
		}
	}
	return fields
}

func WriteValidationError(w http.ResponseWriter, err *ValidationError) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Message: "Validation error",
		Details: err.Error(),
		Errors:  err.Fields(),
	})
}

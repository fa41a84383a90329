package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrNotEligible      = errors.New("system already configured")
	ErrStorage          = errors.New("storage failure")
	ErrUserNotFound     = errors.New("user not found")
	ErrForbidden        = errors.New("access forbidden")
	ErrNotFound         = errors.New("record not found")
	ErrHasDependents    = errors.New("record has dependent records")
	ErrDuplicate        = errors.New("record already exists")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level messages back to the caller.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field message.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field was rejected.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

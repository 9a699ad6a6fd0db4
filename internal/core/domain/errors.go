package domain

import (
	"errors"
	"strings"
)

// Authentication failures. Messages are returned to the client as-is.
var (
	ErrNotAuthorized  = errors.New("not authorized to access this route")
	ErrTokenInvalid   = errors.New("token is not valid")
	ErrTokenExpired   = errors.New("token expired")
	ErrNoUserForToken = errors.New("no user found with this token")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

// ValidationError carries every field failure found in a single request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message, Value: value}}}
}

// IsAuthError reports whether err is one of the 401-class errors.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrNoUserForToken) ||
		errors.Is(err, ErrInvalidCredentials)
}

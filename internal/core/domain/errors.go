package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrNotOwner         = fmt.Errorf("%w: not the owner of this resource", ErrNotAuthorized)
	ErrNotAdmin         = fmt.Errorf("%w: admin role required", ErrNotAuthorized)

	// ErrInvalidCredential is returned for a bearer token that is present but
	// fails verification.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrInvalidLogin is returned for a failed username/password check.
	ErrInvalidLogin = errors.New("invalid username or password")

	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is a single failing field.
type FieldError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(msgs, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundf returns an ErrNotFound wrapped with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// StoreError wraps a backend failure so it satisfies
// errors.Is(err, ErrStoreUnavailable) while keeping the cause.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

package graphql

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// Error codes carried in extensions.code.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// codedError satisfies gqlerrors.ExtendedError so the code survives
// formatting.
type codedError struct {
	message string
	code    string
	fields  []domain.FieldError
}

func (e *codedError) Error() string { return e.message }

func (e *codedError) Extensions() map[string]any {
	ext := map[string]any{"code": e.code}
	if len(e.fields) > 0 {
		fields := make([]map[string]string, 0, len(e.fields))
		for _, f := range e.fields {
			fields = append(fields, map[string]string{"field": f.Field, "message": f.Message})
		}
		ext["fields"] = fields
	}
	return ext
}

// errorMapper turns domain errors into coded GraphQL errors. Outside
// development the message of an internal error is replaced.
type errorMapper struct {
	dev bool
	log zerolog.Logger
}

func (m errorMapper) convert(err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return &codedError{message: ve.Error(), code: CodeBadUserInput, fields: ve.Fields}
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrInvalidCredential), errors.Is(err, domain.ErrInvalidLogin):
		return &codedError{message: err.Error(), code: CodeUnauthenticated}
	case errors.Is(err, domain.ErrNotAuthorized):
		return &codedError{message: err.Error(), code: CodeForbidden}
	case errors.Is(err, domain.ErrNotFound):
		return &codedError{message: err.Error(), code: CodeNotFound}
	case errors.Is(err, domain.ErrConflict):
		return &codedError{message: err.Error(), code: CodeConflict}
	case errors.Is(err, domain.ErrValidation):
		return &codedError{message: err.Error(), code: CodeBadUserInput}
	}

	m.log.Error().Err(err).Msg("graphql resolver failed")
	msg := "internal server error"
	if m.dev {
		msg = err.Error()
	}
	return &codedError{message: msg, code: CodeInternal}
}

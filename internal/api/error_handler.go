package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldIssue `json:"fields,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

type fieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status codes.
//   - Logs unexpected errors internally.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
//
// With dev set, the cause of a 500 is echoed back in "detail".
func NewHTTPErrorHandler(log zerolog.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if code == http.StatusInternalServerError && dev {
			body.Detail = err.Error()
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && errors.Is(he.Internal, domain.ErrInvalidCredential) {
			return http.StatusUnauthorized, errorResponse{Error: "invalid token"}
		}
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body := errorResponse{Error: ve.Error()}
		for _, f := range ve.Fields {
			body.Fields = append(body.Fields, fieldIssue{Field: f.Field, Message: f.Message})
		}
		return http.StatusBadRequest, body
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "not authenticated"}
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized, errorResponse{Error: "invalid token"}
	case errors.Is(err, domain.ErrInvalidLogin):
		return http.StatusUnauthorized, errorResponse{Error: domain.ErrInvalidLogin.Error()}
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden, errorResponse{Error: "not the owner of this resource"}
	case errors.Is(err, domain.ErrNotAdmin):
		return http.StatusForbidden, errorResponse{Error: "admin role required"}
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden, errorResponse{Error: "not authorized"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

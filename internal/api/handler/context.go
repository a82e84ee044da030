package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/domain"
)

// principal returns the caller resolved by the Authenticate middleware. A
// request that never went through the middleware is anonymous, so the
// services reject it on their own.
func principal(c echo.Context) domain.Principal {
	return auth.PrincipalFrom(c.Request().Context())
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError(domain.FieldError{Field: "body", Message: "invalid payload"})
	}
	return c.Validate(req)
}

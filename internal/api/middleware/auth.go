package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/domain"
)

// PrincipalResolver turns an Authorization header into a principal.
type PrincipalResolver interface {
	ResolveHeader(header string) (domain.Principal, error)
}

// Authenticate resolves the bearer token, if any, and stores the resulting
// auth.Scope in the request context. Requests without a token pass through as
// anonymous; a token that fails verification is rejected with 401.
func Authenticate(resolver PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := resolver.ResolveHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithScope(req.Context(), &auth.Scope{Principal: p})))
			c.Set("principal", p)
			c.Set("role", p.Role)

			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth.PrincipalFrom(c.Request().Context()).Anonymous() {
				return domain.ErrNotAuthenticated
			}
			return next(c)
		}
	}
}

package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Authenticate.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := auth.PrincipalFrom(c.Request().Context())
			if p.Anonymous() {
				return domain.ErrNotAuthenticated
			}
			if _, ok := allowed[p.Role]; !ok {
				if _, adminOnly := allowed[domain.RoleAdmin]; adminOnly && len(allowed) == 1 {
					return domain.ErrNotAdmin
				}
				return fmt.Errorf("%w: role %q", domain.ErrNotAuthorized, p.Role)
			}
			return next(c)
		}
	}
}

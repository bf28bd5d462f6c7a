package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
)

// RBAC enforces role-based access control on the role claim RequireSession
// extracted. Roles compare case-insensitively.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToUpper(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if _, ok := allowed[strings.ToUpper(role)]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

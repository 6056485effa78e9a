package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/squidpro/auth-system/internal/core/domain"
)

// RequireRole enforces role-based access control. The check reads the
// account's stored role set, never the derived role payloads.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, _ := c.Get("account").(*domain.Account)
			if account == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			for _, role := range account.Roles {
				if _, ok := allowed[role]; ok {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}

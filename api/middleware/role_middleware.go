package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole composes behind RequireAuth: any valid token passes the
// guard, this narrows it to one role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok || claims.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, "access denied: requires role "+role)
			}
			return next(c)
		}
	}
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"avtosalon/internal/utils"
)

const AccessCookieName = "accessToken"

// AccessGuard verifies the presented access token before a protected
// handler runs. The token comes from the accessToken cookie, or from an
// Authorization: Bearer header in deployments that front the API directly.
type AccessGuard struct {
	Tokens *utils.TokenManager
}

func (g AccessGuard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := g.extractToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "token not found")
		}

		claims, err := g.Tokens.ParseAccessToken(token)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		SetAuthContext(c, claims)
		return next(c)
	}
}

func (g AccessGuard) extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authorization := c.Request().Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

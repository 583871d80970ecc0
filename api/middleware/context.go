package middleware

import (
	"github.com/labstack/echo/v4"

	"avtosalon/internal/utils"
)

const contextClaimsKey = "auth_claims"

func SetAuthContext(c echo.Context, claims *utils.Claims) {
	c.Set(contextClaimsKey, claims)
}

func ClaimsFromContext(c echo.Context) (*utils.Claims, bool) {
	claims, ok := c.Get(contextClaimsKey).(*utils.Claims)
	return claims, ok
}

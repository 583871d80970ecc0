package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"avtosalon/api/middleware"
	"avtosalon/internal/dto"
	"avtosalon/internal/service"
)

const (
	emailCookieName   = "email"
	refreshCookieName = "refreshToken"
)

type AuthHandler struct {
	Service       *service.AuthService
	Validate      *validator.Validate
	CookieDomain  string
	SecureCookies bool
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		Service:  svc,
		Validate: validate,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return err
	}

	input := service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	cookieTTL, err := h.Service.Register(c.Request().Context(), input)
	if err != nil {
		return err
	}

	// convenience only: lets the verify step skip re-entering the email
	h.setCookie(c, emailCookieName, req.Email, cookieTTL)

	return c.JSON(http.StatusCreated, envelope{
		Success: true,
		Message: "user created, please verify your email",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return err
	}

	result, err := h.Service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setCookie(c, middleware.AccessCookieName, result.AccessToken, result.AccessTTL)
	h.setCookie(c, refreshCookieName, result.RefreshToken, result.RefreshTTL)

	user := dto.UserResponseFromEntity(result.User)
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "login successful",
		User:    &user,
	})
}

func (h *AuthHandler) Verify(c echo.Context) error {
	var req dto.VerifyRequest
	if err := decodeJSON(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return err
	}

	if err := h.Service.Verify(c.Request().Context(), req.Email, req.Code); err != nil {
		return err
	}

	h.clearCookie(c, emailCookieName)
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "account verified",
	})
}

// Logout always succeeds from the client's perspective; the guard already
// established a valid token, so all that is left is clearing cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		h.Service.Logout(c.Request().Context(), claims)
	}

	h.clearCookie(c, middleware.AccessCookieName)
	h.clearCookie(c, refreshCookieName)
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "logged out",
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token not found")
	}

	result, err := h.Service.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}

	h.setCookie(c, middleware.AccessCookieName, result.AccessToken, result.AccessTTL)
	h.setCookie(c, refreshCookieName, result.RefreshToken, result.RefreshTTL)

	user := dto.UserResponseFromEntity(result.User)
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "tokens refreshed",
		User:    &user,
	})
}

func (h *AuthHandler) setCookie(c echo.Context, name, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	User    *dto.UserResponse `json:"user,omitempty"`
}

func decodeJSON(c echo.Context, target any) error {
	return json.NewDecoder(c.Request().Body).Decode(target)
}

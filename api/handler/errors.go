package handler

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"avtosalon/internal/service"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// NewHTTPErrorHandler is the single error boundary: every handler returns
// its error upward and this maps it to a status code and the uniform
// {success:false, message} body. Unclassified errors become a generic 500;
// internals never reach the client. The stack is attached only outside
// production.
func NewHTTPErrorHandler(log *logrus.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := classify(err)

		if status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).Error("request failed")
		}

		response := errorResponse{Success: false, Message: message}
		if !production && status >= http.StatusInternalServerError {
			response.Stack = err.Error() + "\n" + string(debug.Stack())
		}
		if writeErr := c.JSON(status, response); writeErr != nil {
			log.WithError(writeErr).Warn("error response write failed")
		}
	}
}

func classify(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, validationMessage(validationErrs)
	}

	switch {
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotVerified),
		errors.Is(err, service.ErrCodeExpired),
		errors.Is(err, service.ErrCodeMismatch),
		errors.Is(err, service.ErrBrandTaken),
		errors.Is(err, service.ErrImageRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidRefresh):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrCarNotFound),
		errors.Is(err, service.ErrCarDetailsNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrMailNotSent):
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func validationMessage(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fieldErr.Field()+" is required")
		case "email":
			messages = append(messages, "invalid email format")
		case "min":
			messages = append(messages, fieldErr.Field()+" must be at least "+fieldErr.Param()+" characters")
		case "max":
			messages = append(messages, fieldErr.Field()+" must be at most "+fieldErr.Param()+" characters")
		case "len":
			messages = append(messages, fieldErr.Field()+" must be exactly "+fieldErr.Param()+" characters")
		case "numeric":
			messages = append(messages, fieldErr.Field()+" must contain only digits")
		default:
			messages = append(messages, fieldErr.Field()+" is invalid")
		}
	}
	return strings.Join(messages, ", ")
}

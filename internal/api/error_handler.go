package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskflow/task-api/internal/api/handler"
	"github.com/taskflow/task-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes and client messages.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders the envelope {"success": false, "message": ..., "errors": [...]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, handler.ErrorResponse{
			Message: "Validation Error",
			Errors:  ve.Fields,
		}
	}

	if code, msg, ok := domainError(err); ok {
		return code, handler.ErrorResponse{Message: msg}
	}

	// Echo's own errors (router 404/405, body limit, rate limiter).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Code == http.StatusNotFound && errors.Is(err, echo.ErrNotFound) {
			msg = "Route not found"
		}
		return he.Code, handler.ErrorResponse{Message: msg}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Message: "Server Error"}
}

func domainError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusUnauthorized, "Not authorized to access this route", true
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired", true
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, "Token is not valid", true
	case errors.Is(err, domain.ErrNoUserForToken):
		return http.StatusUnauthorized, "No user found with this token", true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", true
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "User already exists with this email", true
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", true
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Not authorized to access this task", true
	}
	return 0, "", false
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-api/internal/api/middleware"
	"github.com/taskflow/task-api/internal/core/domain"
)

var errInvalidPayload = echo.NewHTTPError(http.StatusBadRequest, "invalid payload")

// currentIdentity returns the caller stored by the Auth middleware. Missing
// identity means the route was mounted without Auth and is reported as 401.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, domain.ErrNotAuthorized
	}
	return identity, nil
}

type request interface {
	normalize()
}

// bindRequest decodes the JSON body into req, normalizes it and validates it.
func bindRequest(c echo.Context, req request) error {
	if err := c.Bind(req); err != nil {
		return errInvalidPayload
	}
	req.normalize()
	return c.Validate(req)
}

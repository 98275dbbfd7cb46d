package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/post-app/backend/internal/middleware"
	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the caller's uid set by the auth middleware,
// or "" for anonymous requests.
func getUserIDFromContext(c echo.Context) string {
	uid, _ := c.Get(middleware.UserIDKey).(string)
	return uid
}

// httpError maps a service error onto the HTTP status the client sees.
// Unclassified errors are reported with a generic message.
func httpError(err error) error {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, models.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNoRecipients):
		return echo.NewHTTPError(http.StatusBadRequest, models.ErrNoRecipients.Error())
	case errors.Is(err, models.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

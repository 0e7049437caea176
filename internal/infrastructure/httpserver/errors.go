package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meenabazaar/order-management/internal/core/ports"
)

// httpError maps service errors to HTTP status codes. Anything unrecognized
// is a 500; cache failures never reach this point.
func httpError(err error) error {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ports.ErrDuplicate):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrTooManyResetRequests):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ports.ErrResetTokenOutstanding):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// Package handler contains the Echo HTTP handlers.  Handlers bind and
// validate request payloads, call into the service layer and map its
// errors onto HTTP status codes; all business rules live below them.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orcabay/sail-reservation/internal/repository"
	"github.com/orcabay/sail-reservation/internal/service"
)

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// serviceError maps service and repository errors onto HTTP
// responses.  Every handler funnels unrecognized errors through here
// so status codes stay consistent across endpoints.
func serviceError(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
	}
	var ise *service.InsufficientSeatsError
	if errors.As(err, &ise) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":              "insufficient seats",
			"sail_available":     ise.SailAvailable,
			"sail_requested":     ise.SailRequested,
			"activity_available": ise.ActivityAvailable,
			"activity_requested": ise.ActivityRequested,
		})
	}
	switch {
	case errors.Is(err, repository.ErrSailNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sail not found"})
	case errors.Is(err, repository.ErrInvalidCombination):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "boat cannot run this activity"})
	case errors.Is(err, repository.ErrAlreadyStarted),
		errors.Is(err, repository.ErrNotStarted),
		errors.Is(err, repository.ErrAlreadyEnded),
		errors.Is(err, repository.ErrNotTransferable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrRetryable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporary contention, retry the request"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orcabay/sail-reservation/internal/service"
)

// SailHandler serves sail lifecycle transitions and single-sail reads.
type SailHandler struct {
	Lifecycle *service.Lifecycle
	Dashboard *service.Dashboard
}

// NewSailHandler constructs a SailHandler.
func NewSailHandler(lc *service.Lifecycle, db *service.Dashboard) *SailHandler {
	if lc == nil || db == nil {
		panic("nil service passed to NewSailHandler")
	}
	return &SailHandler{Lifecycle: lc, Dashboard: db}
}

// UpdateStatus handles POST /v1/sails/:id/status with a body of
// {"status": "started"} or {"status": "ended"}.  The server stamps
// the transition time itself; the response carries the updated sail
// plus the boat's next sail so the crew display advances in one call.
func (h *SailHandler) UpdateStatus(c echo.Context) error {
	sailID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var res *service.TransitionResult
	switch body.Status {
	case "started":
		res, err = h.Lifecycle.Start(c.Request().Context(), sailID)
	case "ended":
		res, err = h.Lifecycle.End(c.Request().Context(), sailID)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be started or ended"})
	}
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GetSail handles GET /v1/sails/:id and returns the sail with its
// derived status, occupancy, free seats and bookings.
func (h *SailHandler) GetSail(c echo.Context) error {
	sailID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	v, err := h.Dashboard.SailDetails(c.Request().Context(), sailID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": v})
}

// UpcomingForBoat handles GET /v1/boats/:id/upcoming-sails.
func (h *SailHandler) UpcomingForBoat(c echo.Context) error {
	boatID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	items, err := h.Dashboard.UpcomingForBoat(c.Request().Context(), boatID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

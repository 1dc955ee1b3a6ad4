package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orcabay/sail-reservation/internal/service"
)

// DashboardHandler serves the staff overview endpoints.
type DashboardHandler struct {
	Dashboard *service.Dashboard
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *service.Dashboard) *DashboardHandler {
	if db == nil {
		panic("nil service passed to NewDashboardHandler")
	}
	return &DashboardHandler{Dashboard: db}
}

// CurrentSails handles GET /v1/dashboard/current-sails: per boat, the
// sail the crew should be looking at right now.
func (h *DashboardHandler) CurrentSails(c echo.Context) error {
	items, err := h.Dashboard.CurrentSails(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// NextSails handles GET /v1/dashboard/next-sails: today's schedule per
// boat with derived sail and boat statuses.
func (h *DashboardHandler) NextSails(c echo.Context) error {
	items, err := h.Dashboard.NextSails(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

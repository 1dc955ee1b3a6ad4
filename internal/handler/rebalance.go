package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orcabay/sail-reservation/internal/service"
)

// RebalanceHandler exposes the late-booking rebalancer to managers:
// an on-demand sweep, the revert escape hatch and a read of the
// current late candidates.  The background ticker runs the same
// Sweep; these endpoints exist for the dock office.
type RebalanceHandler struct {
	Rebalancer *service.Rebalancer
	Dashboard  *service.Dashboard
}

// NewRebalanceHandler constructs a RebalanceHandler.
func NewRebalanceHandler(rb *service.Rebalancer, db *service.Dashboard) *RebalanceHandler {
	if rb == nil || db == nil {
		panic("nil service passed to NewRebalanceHandler")
	}
	return &RebalanceHandler{Rebalancer: rb, Dashboard: db}
}

// Run handles POST /v1/rebalancer/run: one immediate sweep.
func (h *RebalanceHandler) Run(c echo.Context) error {
	res, err := h.Rebalancer.Sweep(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Revert handles POST /v1/sails/:id/revert-transfer: undoes a late
// transfer, moving the absorbing sail's bookings back.
func (h *RebalanceHandler) Revert(c echo.Context) error {
	sailID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	res, err := h.Rebalancer.Revert(c.Request().Context(), sailID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// LateSails handles GET /v1/rebalancer/late-sails: the sails the next
// sweep would act on.
func (h *RebalanceHandler) LateSails(c echo.Context) error {
	sails, err := h.Rebalancer.LateSails(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": h.Dashboard.Views(sails)})
}

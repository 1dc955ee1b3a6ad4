// Package router registers the HTTP routes.  Public endpoints (the
// booking widget and auth) carry no JWT middleware; staff endpoints
// are grouped under JWT + role checks.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/orcabay/sail-reservation/internal/handler"
	"github.com/orcabay/sail-reservation/internal/middleware"
	"github.com/orcabay/sail-reservation/internal/model"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth      *handler.AuthHandler
	Booking   *handler.BookingHandler
	Sail      *handler.SailHandler
	Dashboard *handler.DashboardHandler
	Rebalance *handler.RebalanceHandler
}

// Register wires all routes onto the Echo instance.
func Register(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", handler.Health)

	// Booking widget endpoints: customers book without an account, so
	// these stay public.
	e.POST("/v1/bookings/check-availability", h.Booking.CheckAvailability)
	e.POST("/v1/bookings", h.Booking.CreateBooking)

	// Session endpoints: register, login, refresh and logout need no
	// existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/refresh-access", h.Auth.RefreshAccess)
	g.POST("/logout", h.Auth.Logout)
	e.POST("/v1/logout", h.Auth.Logout)

	// Staff endpoints: any authenticated crew member.
	staff := e.Group("/v1")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole(model.RoleSkipper, model.RoleManager))
	staff.GET("/me", h.Auth.Me)
	staff.GET("/sails/:id", h.Sail.GetSail)
	staff.POST("/sails/:id/status", h.Sail.UpdateStatus)
	staff.GET("/boats/:id/upcoming-sails", h.Sail.UpcomingForBoat)
	staff.GET("/dashboard/current-sails", h.Dashboard.CurrentSails)
	staff.GET("/dashboard/next-sails", h.Dashboard.NextSails)
	staff.GET("/rebalancer/late-sails", h.Rebalance.LateSails)

	// Manager-only: forcing a sweep and undoing a transfer reshuffle
	// customer bookings.
	mgr := e.Group("/v1")
	mgr.Use(middleware.JWTAuth(jwtSecret))
	mgr.Use(middleware.RequireRole(model.RoleManager))
	mgr.POST("/rebalancer/run", h.Rebalance.Run)
	mgr.POST("/sails/:id/revert-transfer", h.Rebalance.Revert)
}

// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/streamfest/station-booking/internal/handler"
)

// RegisterRoutes registers routes that carry no business logic.  At the
// moment that is only the health check used by load balancers and
// monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBooking registers the booking API under /v1.  There is no
// authentication middleware: booking and cancelling are open by design,
// and the audit trail guards itself with the shared admin password.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, s *handler.ScheduleHandler, a *handler.AuditHandler) {
	g := e.Group("/v1")
	// Create a booking; the response carries the cancellation code.
	g.POST("/bookings", b.Book)
	// Cancel a booking by its code.
	g.DELETE("/bookings/:code", b.Cancel)
	// Future occupancy grid, blanks for free slots.
	g.GET("/schedule", s.Schedule)
	// Station set and event window bounds for client-side pickers.
	g.GET("/stations", s.Stations)
	// Full audit trail; password checked in the handler, POST keeps the
	// credential out of URLs.
	g.POST("/audit-log", a.AuditTrail)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/streamfest/station-booking/internal/booking"
)

// ScheduleHandler serves the read-only views: the future occupancy grid
// and the station/window metadata clients need to render a picker.
type ScheduleHandler struct {
	svc *booking.Service
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(svc *booking.Service) *ScheduleHandler {
	if svc == nil {
		panic("nil service passed to NewScheduleHandler")
	}
	return &ScheduleHandler{svc: svc}
}

// Schedule handles GET /v1/schedule.  It returns one cell per (hour,
// station) pair of the remaining event window; free slots have an empty
// occupant so clients can render them as blanks.
func (h *ScheduleHandler) Schedule(c echo.Context) error {
	grid, err := h.svc.Schedule(c.Request().Context())
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": grid})
}

// Stations handles GET /v1/stations.  It returns the configured station
// set and the event window bounds so clients can constrain their date and
// hour pickers.
func (h *ScheduleHandler) Stations(c echo.Context) error {
	w := h.svc.Window()
	return c.JSON(http.StatusOK, echo.Map{
		"stations":     h.svc.Stations(),
		"window_start": w.Start.Format(time.RFC3339),
		"window_end":   w.End.Format(time.RFC3339),
	})
}

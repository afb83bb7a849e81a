package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/streamfest/station-booking/internal/booking"
)

// BookingHandler exposes the booking core over HTTP.  It owns request
// decoding and the mapping from the service error taxonomy to HTTP status
// codes; all business rules live in the booking package.
type BookingHandler struct {
	svc *booking.Service
}

// NewBookingHandler constructs a BookingHandler.  The service must be
// non-nil.
func NewBookingHandler(svc *booking.Service) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{svc: svc}
}

type bookRequest struct {
	Station       string `json:"station"`
	Start         string `json:"start"` // RFC3339
	DurationHours int    `json:"duration_hours"`
	Name          string `json:"name"`
}

// Book handles POST /v1/bookings.  On success it returns 201 with the
// cancellation code for the new booking.
func (h *BookingHandler) Book(c echo.Context) error {
	var body bookRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, err := time.Parse(time.RFC3339, body.Start)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must be an RFC3339 timestamp"})
	}
	code, err := h.svc.Book(c.Request().Context(), body.Station, start, body.DurationHours, body.Name)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"code": code})
}

// Cancel handles DELETE /v1/bookings/:code.  It clears the booking the
// code refers to and returns 204.
func (h *BookingHandler) Cancel(c echo.Context) error {
	if err := h.svc.Cancel(c.Request().Context(), c.Param("code")); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// bookingError translates the booking error taxonomy into an HTTP
// response.  Sentinel messages are written verbatim; anything unexpected
// is reported as a storage error without leaking driver details.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidName),
		errors.Is(err, booking.ErrPastBooking),
		errors.Is(err, booking.ErrInvalidDuration),
		errors.Is(err, booking.ErrOutsideWindow),
		errors.Is(err, booking.ErrUnknownStation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrSlotConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidCode):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrBusy):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
}

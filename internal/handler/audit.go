package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/streamfest/station-booking/internal/booking"
)

// AuditHandler serves the password-gated audit trail.
type AuditHandler struct {
	svc *booking.Service
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(svc *booking.Service) *AuditHandler {
	if svc == nil {
		panic("nil service passed to NewAuditHandler")
	}
	return &AuditHandler{svc: svc}
}

type auditRequest struct {
	Password string `json:"password"`
}

// AuditTrail handles POST /v1/audit-log.  The shared admin password
// travels in the request body so it never appears in URLs or access logs;
// a wrong password yields 401.  On success it returns every booking and
// cancellation event in chronological order.
func (h *AuditHandler) AuditTrail(c echo.Context) error {
	var body auditRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	entries, err := h.svc.AuditTrail(c.Request().Context(), body.Password)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries})
}

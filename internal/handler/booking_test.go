package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/streamfest/station-booking/internal/booking"
	"github.com/streamfest/station-booking/internal/handler"
	"github.com/streamfest/station-booking/internal/model"
	"github.com/streamfest/station-booking/internal/router"
	"github.com/streamfest/station-booking/internal/utils"
)

// Minimal in-memory stores, just enough to drive the handlers through a
// real Service.  The booking package owns the thorough store-level tests.

type stubLedger struct {
	occupied map[string]string // "station|hour" -> name
}

func ledgerKey(st model.Station, h time.Time) string {
	return string(st) + "|" + h.UTC().Format("2006-01-02T15")
}

func (s *stubLedger) CountOccupied(_ context.Context, st model.Station, start, end time.Time) (int, error) {
	n := 0
	for h := start; !h.After(end); h = h.Add(time.Hour) {
		if _, ok := s.occupied[ledgerKey(st, h)]; ok {
			n++
		}
	}
	return n, nil
}

func (s *stubLedger) Reserve(_ context.Context, st model.Station, hours []time.Time, name string) error {
	for _, h := range hours {
		s.occupied[ledgerKey(st, h)] = name
	}
	return nil
}

func (s *stubLedger) Release(_ context.Context, st model.Station, hours []time.Time) error {
	for _, h := range hours {
		delete(s.occupied, ledgerKey(st, h))
	}
	return nil
}

func (s *stubLedger) Occupied(context.Context, time.Time) ([]model.SlotView, error) {
	return nil, nil
}

type stubAudit struct {
	entries []model.AuditEntry
}

func (s *stubAudit) Append(_ context.Context, e *model.AuditEntry) error {
	e.ID = uint64(len(s.entries) + 1)
	s.entries = append(s.entries, *e)
	return nil
}

func (s *stubAudit) LatestBooked(_ context.Context, code string) (*model.AuditEntry, error) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Code == code && s.entries[i].Action == model.ActionBooked {
			e := s.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *stubAudit) RemovedAfter(_ context.Context, afterID uint64, st model.Station, start time.Time, duration int, name string) (bool, error) {
	for _, e := range s.entries {
		if e.ID > afterID && e.Action == model.ActionRemoved && e.Station == st &&
			e.Start.Equal(start) && e.DurationHours == duration && e.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubAudit) List(context.Context) ([]model.AuditEntry, error) {
	return append([]model.AuditEntry(nil), s.entries...), nil
}

type noopLock struct{}

func (noopLock) Acquire(context.Context) (func(), error) { return func() {}, nil }

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	window, err := model.NewWindow(
		time.Date(2023, 7, 22, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 7, 29, 23, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	hash, err := utils.HashPassword("letmein", bcrypt.MinCost)
	require.NoError(t, err)

	svc := booking.NewService(booking.ServiceParams{
		Ledger:    &stubLedger{occupied: map[string]string{}},
		Audit:     &stubAudit{},
		Lock:      noopLock{},
		Stations:  []model.Station{"Door (Left)", "Door (Right)"},
		Window:    window,
		AdminHash: hash,
		Clock: func() time.Time {
			return time.Date(2023, 7, 23, 9, 0, 0, 0, time.UTC)
		},
	})

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBooking(e,
		handler.NewBookingHandler(svc),
		handler.NewScheduleHandler(svc),
		handler.NewAuditHandler(svc),
	)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBookEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/bookings",
		`{"station":"Door (Left)","start":"2023-07-23T10:00:00Z","duration_hours":2,"name":"Bob"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Len(t, created.Code, utils.BookingCodeLen)

	// Overlapping hour on the same station conflicts.
	rec = doJSON(e, http.MethodPost, "/v1/bookings",
		`{"station":"Door (Left)","start":"2023-07-23T11:00:00Z","duration_hours":1,"name":"Carol"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Cancel by code, then the code is spent.
	rec = doJSON(e, http.MethodDelete, "/v1/bookings/"+created.Code, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(e, http.MethodDelete, "/v1/bookings/"+created.Code, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookEndpointRejectsBadRequests(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/bookings",
		`{"station":"Door (Left)","start":"not-a-time","duration_hours":1,"name":"Bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/bookings",
		`{"station":"Door (Left)","start":"2023-07-22T10:00:00Z","duration_hours":1,"name":"Bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code) // past booking
}

func TestAuditEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/audit-log", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/audit-log", `{"password":"letmein"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStationsEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/v1/stations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Stations    []string `json:"stations"`
		WindowStart string   `json:"window_start"`
		WindowEnd   string   `json:"window_end"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Door (Left)", "Door (Right)"}, body.Stations)
	assert.Equal(t, "2023-07-22T00:00:00Z", body.WindowStart)
	assert.Equal(t, "2023-07-29T23:00:00Z", body.WindowEnd)
}

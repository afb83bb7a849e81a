package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/streamfest/station-booking/internal/model"
	"github.com/streamfest/station-booking/internal/queue"
	"github.com/streamfest/station-booking/internal/utils"
)

// LedgerStore is the durable occupancy table: one entry per occupied
// (station, hour) pair.  Implementations must make Reserve atomic so a
// partially written range is never visible.
type LedgerStore interface {
	// CountOccupied returns how many hours of the inclusive range
	// [start, end] are occupied for the station.
	CountOccupied(ctx context.Context, station model.Station, start, end time.Time) (int, error)
	// Reserve writes the occupant name into every given hour.
	Reserve(ctx context.Context, station model.Station, hours []time.Time, name string) error
	// Release clears every given hour back to unoccupied.
	Release(ctx context.Context, station model.Station, hours []time.Time) error
	// Occupied lists all occupied slots with hour >= from.
	Occupied(ctx context.Context, from time.Time) ([]model.SlotView, error)
}

// AuditStore is the append-only record of booking and cancellation events.
// Entries are never mutated or deleted.
type AuditStore interface {
	// Append persists the entry and assigns its ID.
	Append(ctx context.Context, e *model.AuditEntry) error
	// LatestBooked returns the most recent Booked entry carrying the given
	// code, or nil when no such entry exists.
	LatestBooked(ctx context.Context, code string) (*model.AuditEntry, error)
	// RemovedAfter reports whether a Removed entry later than afterID
	// references the same station/start/duration/name combination.
	RemovedAfter(ctx context.Context, afterID uint64, station model.Station, start time.Time, duration int, name string) (bool, error)
	// List returns all entries ordered by timestamp ascending.
	List(ctx context.Context) ([]model.AuditEntry, error)
}

// Locker serializes ledger and audit mutations across all server processes
// sharing the same database.  Acquire blocks until the lock is held or its
// timeout elapses; the returned function releases the lock.
type Locker interface {
	Acquire(ctx context.Context) (func(), error)
}

// EventPublisher fans booking events out to the message broker.  Publishing
// is best effort; the Service logs failures and carries on.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// ServiceParams collects the dependencies of a Service.  Ledger, Audit and
// Lock are required; Publisher may be nil to disable event fan-out and
// Clock may be nil to use wall-clock time.
type ServiceParams struct {
	Ledger    LedgerStore
	Audit     AuditStore
	Lock      Locker
	Publisher EventPublisher
	Stations  []model.Station
	Window    model.Window
	AdminHash string // bcrypt hash of the shared admin password
	Logger    *zap.Logger
	Clock     func() time.Time
}

// Service orchestrates validation, availability checking and the ledger
// and audit mutations for the book and cancel operations.  All mutations
// happen under the shared exclusive lock; the availability check is
// repeated under the lock because a check taken outside it is racy.
type Service struct {
	ledger    LedgerStore
	audit     AuditStore
	lock      Locker
	publisher EventPublisher
	stations  []model.Station
	window    model.Window
	adminHash string
	log       *zap.Logger
	now       func() time.Time
}

// NewService constructs a Service from its parameters.
func NewService(p ServiceParams) *Service {
	if p.Ledger == nil || p.Audit == nil || p.Lock == nil {
		panic("nil store passed to NewService")
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Clock == nil {
		p.Clock = time.Now
	}
	return &Service{
		ledger:    p.Ledger,
		audit:     p.Audit,
		lock:      p.Lock,
		publisher: p.Publisher,
		stations:  p.Stations,
		window:    p.Window,
		adminHash: p.AdminHash,
		log:       p.Logger,
		now:       p.Clock,
	}
}

// Stations returns the configured station set in display order.
func (s *Service) Stations() []model.Station { return s.stations }

// Window returns the event window the ledger covers.
func (s *Service) Window() model.Window { return s.window }

// Book reserves the inclusive hour range [start, start+duration-1] on the
// given station for name.  On success it returns the cancellation code for
// the new booking.  Validation runs before the lock is taken; availability
// is re-checked once the lock is held.  The Booked audit entry is written
// before the ledger so that a crash between the two leaves an orphan audit
// record rather than untracked occupied slots.
func (s *Service) Book(ctx context.Context, station string, start time.Time, duration int, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	// Slots have hourly granularity; validate against the hour the
	// request actually lands on.
	start = start.UTC().Truncate(time.Hour)
	if err := ValidateBookingTime(start, duration, s.now()); err != nil {
		return "", err
	}
	if !model.ContainsStation(s.stations, station) {
		return "", ErrUnknownStation
	}
	if !s.window.ContainsRange(start, duration) {
		return "", ErrOutsideWindow
	}

	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return "", ErrBusy
	}
	defer release()

	st := model.Station(station)
	end := start.Add(time.Duration(duration-1) * time.Hour)
	occupied, err := s.ledger.CountOccupied(ctx, st, start, end)
	if err != nil {
		return "", fmt.Errorf("check availability: %w", err)
	}
	if occupied > 0 {
		return "", ErrSlotConflict
	}

	code, err := utils.NewBookingCode()
	if err != nil {
		return "", fmt.Errorf("generate booking code: %w", err)
	}
	entry := &model.AuditEntry{
		Timestamp:     s.now().UTC(),
		Code:          code,
		Name:          name,
		Station:       st,
		Start:         start,
		DurationHours: duration,
		Action:        model.ActionBooked,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		return "", fmt.Errorf("append audit entry: %w", err)
	}
	if err := s.ledger.Reserve(ctx, st, rangeHours(start, duration), name); err != nil {
		return "", fmt.Errorf("write ledger: %w", err)
	}

	s.log.Info("slot booked",
		zap.String("station", station),
		zap.Time("start", start),
		zap.Int("duration_hours", duration),
		zap.String("code", code),
	)
	s.publish(ctx, entry)
	return code, nil
}

// Cancel clears the booking identified by code and appends a Removed audit
// entry.  A code whose booking was already cancelled is treated the same
// as an unknown code.
func (s *Service) Cancel(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidCode
	}

	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return ErrBusy
	}
	defer release()

	booked, err := s.audit.LatestBooked(ctx, code)
	if err != nil {
		return fmt.Errorf("look up booking code: %w", err)
	}
	if booked == nil {
		return ErrInvalidCode
	}
	cancelled, err := s.audit.RemovedAfter(ctx, booked.ID, booked.Station, booked.Start, booked.DurationHours, booked.Name)
	if err != nil {
		return fmt.Errorf("check prior cancellation: %w", err)
	}
	if cancelled {
		return ErrInvalidCode
	}

	if err := s.ledger.Release(ctx, booked.Station, rangeHours(booked.Start, booked.DurationHours)); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	entry := &model.AuditEntry{
		Timestamp:     s.now().UTC(),
		Name:          booked.Name,
		Station:       booked.Station,
		Start:         booked.Start,
		DurationHours: booked.DurationHours,
		Action:        model.ActionRemoved,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	s.log.Info("slot removed",
		zap.String("station", string(booked.Station)),
		zap.Time("start", booked.Start),
		zap.Int("duration_hours", booked.DurationHours),
	)
	s.publish(ctx, entry)
	return nil
}

// Schedule returns the occupancy grid for every window hour that has not
// yet passed: one SlotView per (hour, station) pair, with an empty
// occupant for free slots.  It takes no lock; a slightly stale snapshot is
// acceptable for the read-only view.
func (s *Service) Schedule(ctx context.Context) ([]model.SlotView, error) {
	now := s.now().UTC()
	occupied, err := s.ledger.Occupied(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	byCell := make(map[string]string, len(occupied))
	for _, sv := range occupied {
		byCell[cellKey(sv.Station, sv.Hour)] = sv.Occupant
	}

	grid := make([]model.SlotView, 0, len(s.stations)*24)
	for _, hour := range s.window.Hours() {
		if hour.Before(now) {
			continue
		}
		for _, st := range s.stations {
			grid = append(grid, model.SlotView{
				Hour:     hour,
				Station:  st,
				Occupant: byCell[cellKey(st, hour)],
			})
		}
	}
	return grid, nil
}

// AuditTrail returns the full audit log in chronological order, provided
// the supplied password matches the configured admin hash.
func (s *Service) AuditTrail(ctx context.Context, password string) ([]model.AuditEntry, error) {
	if !utils.VerifyPassword(s.adminHash, password) {
		return nil, ErrUnauthorized
	}
	entries, err := s.audit.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return entries, nil
}

// publish fans the entry out to the broker when a publisher is configured.
// Failures are logged and otherwise ignored: the booking has already been
// durably recorded.
func (s *Service) publish(ctx context.Context, e *model.AuditEntry) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingEvent{
		Code:          e.Code,
		Name:          e.Name,
		Station:       string(e.Station),
		Start:         e.Start.Format(time.RFC3339),
		DurationHours: e.DurationHours,
		Action:        e.Action,
		OccurredAt:    e.Timestamp.Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish booking event", zap.Error(err))
	}
}

// rangeHours expands a start hour and duration into the individual hours
// of the inclusive range.
func rangeHours(start time.Time, duration int) []time.Time {
	hours := make([]time.Time, 0, duration)
	for i := 0; i < duration; i++ {
		hours = append(hours, start.Add(time.Duration(i)*time.Hour))
	}
	return hours
}

func cellKey(st model.Station, hour time.Time) string {
	return string(st) + "|" + hour.UTC().Format("2006-01-02 15")
}

package model

import (
	"fmt"
	"time"
)

// Window is the bounded event window the ledger covers, at hourly
// granularity.  Start and End are both inclusive, so a one-week event
// running 2023-07-22 through 2023-07-29 spans the hours 07-22 00:00 up to
// and including 07-29 23:00.  Bookings whose range falls outside the
// window are rejected rather than extending the ledger domain.
type Window struct {
	Start time.Time // first bookable hour, inclusive
	End   time.Time // last bookable hour, inclusive
}

// NewWindow builds a Window from the given bounds.  Both are truncated to
// the hour and interpreted in UTC.  An error is returned when the end
// precedes the start.
func NewWindow(start, end time.Time) (Window, error) {
	start = start.UTC().Truncate(time.Hour)
	end = end.UTC().Truncate(time.Hour)
	if end.Before(start) {
		return Window{}, fmt.Errorf("event window ends (%s) before it starts (%s)", end, start)
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether the given hour lies inside the window.
func (w Window) Contains(hour time.Time) bool {
	hour = hour.UTC().Truncate(time.Hour)
	return !hour.Before(w.Start) && !hour.After(w.End)
}

// ContainsRange reports whether every hour of the inclusive range
// [start, start+duration-1] lies inside the window.
func (w Window) ContainsRange(start time.Time, duration int) bool {
	if duration < 1 {
		return false
	}
	last := start.UTC().Truncate(time.Hour).Add(time.Duration(duration-1) * time.Hour)
	return w.Contains(start) && w.Contains(last)
}

// Hours enumerates every hour of the window in ascending order.
func (w Window) Hours() []time.Time {
	var hours []time.Time
	for h := w.Start; !h.After(w.End); h = h.Add(time.Hour) {
		hours = append(hours, h)
	}
	return hours
}

// Package booking implements the booking core: validation, availability
// checking and the Service that mutates the ledger and audit log under a
// shared exclusive lock.  Every failure a caller can act on is one of the
// sentinel errors below; handlers compare with errors.Is and translate
// them into HTTP responses.  Anything else that escapes the Service is a
// storage fault wrapping the underlying driver error.
package booking

import "errors"

// ErrInvalidName is returned when a display name is too short, too long or
// contains characters outside the allowed set.
var ErrInvalidName = errors.New("name must be 3-20 characters long using only letters, digits and _ . , ! ' $")

// ErrPastBooking is returned when the requested start time is at or before
// the current moment.
var ErrPastBooking = errors.New("booking time is in the past")

// ErrInvalidDuration is returned when the requested duration is outside
// [1, MaxDurationHours].
var ErrInvalidDuration = errors.New("duration must be between 1 and 8 hours")

// ErrOutsideWindow is returned when any hour of the requested range falls
// outside the event window the ledger covers.
var ErrOutsideWindow = errors.New("booking falls outside the event window")

// ErrUnknownStation is returned when the requested station is not one of
// the configured stations.
var ErrUnknownStation = errors.New("unknown station")

// ErrSlotConflict is returned when at least one hour of the requested
// range is already occupied.
var ErrSlotConflict = errors.New("slot already booked")

// ErrInvalidCode is returned when cancelling with a code that was never
// issued or whose booking has already been cancelled.
var ErrInvalidCode = errors.New("invalid booking code")

// ErrUnauthorized is returned when the supplied admin credential does not
// match the configured hash.
var ErrUnauthorized = errors.New("invalid admin password")

// ErrBusy is returned when the shared booking lock cannot be acquired
// within its timeout.
var ErrBusy = errors.New("booking system busy, try again")

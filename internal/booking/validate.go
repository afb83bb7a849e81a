package booking

import (
	"time"
	"unicode/utf8"
)

// Validation policy values.
const (
	MinNameLen       = 3
	MaxNameLen       = 20
	MaxDurationHours = 8
)

// ValidateName checks a display name against the length and character-set
// rules.  Allowed characters are ASCII letters, digits and _ . , ! ' $.
// It has no side effects and must pass before any persistence step.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinNameLen || n > MaxNameLen {
		return ErrInvalidName
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == ',' || r == '!' || r == '\'' || r == '$':
		default:
			return ErrInvalidName
		}
	}
	return nil
}

// ValidateBookingTime rejects reservations that start at or before now and
// durations outside [1, MaxDurationHours].
func ValidateBookingTime(start time.Time, duration int, now time.Time) error {
	if duration < 1 || duration > MaxDurationHours {
		return ErrInvalidDuration
	}
	if !start.After(now) {
		return ErrPastBooking
	}
	return nil
}

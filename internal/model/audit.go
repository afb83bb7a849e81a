package model

import "time"

// Audit log actions.  A cancellation appends a Removed entry; it never
// mutates or deletes the Booked entry it refers to.
const (
	ActionBooked  = "Booked"
	ActionRemoved = "Removed"
)

// AuditEntry is one immutable row of the append-only audit log.
//
// Fields:
//
//	ID            – primary key, assigned by the store on append.
//	Timestamp     – when the event happened (booking or cancellation time,
//	                not the slot time).
//	Code          – cancellation code; set only on Booked entries.
//	Name          – occupant name the booking was made under.
//	Station       – station the booking covers.
//	Start         – first hour of the booked range.
//	DurationHours – length of the booked range in hours.
//	Action        – ActionBooked or ActionRemoved.
type AuditEntry struct {
	ID            uint64    `json:"-"`
	Timestamp     time.Time `json:"timestamp"`
	Code          string    `json:"code,omitempty"`
	Name          string    `json:"name"`
	Station       Station   `json:"station"`
	Start         time.Time `json:"start"`
	DurationHours int       `json:"duration_hours"`
	Action        string    `json:"action"`
}

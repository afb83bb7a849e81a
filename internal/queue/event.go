// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// BookingEvent is published whenever a slot range is booked or removed.
// It carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.  Code is empty for
// Removed events, mirroring the audit log.
type BookingEvent struct {
	Code          string `json:"code,omitempty"`
	Name          string `json:"name"`
	Station       string `json:"station"`
	Start         string `json:"start"`
	DurationHours int    `json:"duration_hours"`
	Action        string `json:"action"`
	OccurredAt    string `json:"occurred_at"`
}

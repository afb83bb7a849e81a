package model

import "time"

// SlotView is one cell of the occupancy grid returned by the schedule
// view: a single hour of a single station's timeline.  Occupant is the
// empty string when the slot is free.
type SlotView struct {
	Hour     time.Time `json:"hour"`
	Station  Station   `json:"station"`
	Occupant string    `json:"occupant"`
}

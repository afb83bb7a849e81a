package model

import "strings"

// Station is one of the fixed set of named bookable resources.  The set is
// supplied by configuration and does not change while the server runs.
// Names are free-form display strings such as "Door (Left)".
type Station string

// ParseStations splits a comma-separated station list into the ordered set
// used by the ledger.  Surrounding whitespace is trimmed and empty segments
// are dropped.
func ParseStations(s string) []Station {
	parts := strings.Split(s, ",")
	stations := make([]Station, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		stations = append(stations, Station(p))
	}
	return stations
}

// ContainsStation reports whether name is one of the configured stations.
func ContainsStation(stations []Station, name string) bool {
	for _, st := range stations {
		if string(st) == name {
			return true
		}
	}
	return false
}

// Package flights defines the canonical flight entries produced from raw
// provider records and the helpers shared by the window and ranking code.
package flights

import (
	"time"

	"github.com/unklstewy/flightwindow/pkg/coordinates"
)

// Status is the lifecycle state of a flight movement.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusDeparted  Status = "departed"
	StatusArrived   Status = "arrived"
)

// UnknownKey buckets entries whose grouping key is absent.
const UnknownKey = "UNKNOWN"

// Timed is implemented by every entry variant through Base.
type Timed interface {
	EventTime() int64
}

// Base holds the attributes shared by all entry variants.
type Base struct {
	Live       bool
	Status     Status
	FlightCode string

	// EventTimeMs is the canonical timestamp (epoch milliseconds) used for
	// ordering and windowing.
	EventTimeMs int64
}

// EventTime returns the canonical event timestamp in milliseconds.
func (b Base) EventTime() int64 {
	return b.EventTimeMs
}

// Time returns the event timestamp as a time.Time.
func (b Base) Time() time.Time {
	return time.UnixMilli(b.EventTimeMs)
}

// Place describes an airport as seen from a schedule record.
// Absent fields are empty strings.
type Place struct {
	Name        string
	CountryName string
	IATACode    string
	CityName    string
}

// ForwardEntry is a departure from the observed airport.
type ForwardEntry struct {
	Base
	Destination Place
}

// Origin is the departure airport of an arrival, with its position when known.
type Origin struct {
	Place
	Coordinates *coordinates.Geographic
}

// BackwardEntry is an arrival at TargetAirportCode.
type BackwardEntry struct {
	Base
	TargetAirportCode string
	Origin            Origin
}

// Reference is the nearest reference airport of a live aircraft.
type Reference struct {
	Name       string
	Code       string
	DistanceKm float64

	// BearingDeg is the true bearing from the reference to the aircraft
	BearingDeg float64
}

// AircraftEntry is a live aircraft from the flight feed.
type AircraftEntry struct {
	Base
	NearestReference Reference
	OnGround         bool
	Coordinates      *coordinates.Geographic
	Registration     string
	AircraftCode     string
	OriginCode       string
	DestinationCode  string
}

// DestinationKey groups departures by destination IATA code.
func DestinationKey(e ForwardEntry) string {
	return e.Destination.IATACode
}

// OriginKey groups arrivals by origin IATA code.
func OriginKey(e BackwardEntry) string {
	return e.Origin.IATACode
}

// GroupBy partitions entries by key, preserving input order within each
// group. Keys are returned in order of first appearance. Entries with an
// empty key are grouped under UnknownKey.
func GroupBy[T any](entries []T, key func(T) string) ([]string, map[string][]T) {
	var keys []string
	groups := make(map[string][]T)
	for _, e := range entries {
		k := key(e)
		if k == "" {
			k = UnknownKey
		}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], e)
	}
	return keys, groups
}

// OnlyToday keeps the entries whose event falls on the calendar day of now,
// in now's location.
func OnlyToday[T Timed](entries []T, now time.Time) []T {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var out []T
	for _, e := range entries {
		t := time.UnixMilli(e.EventTime())
		if !t.Before(start) && t.Before(end) {
			out = append(out, e)
		}
	}
	return out
}

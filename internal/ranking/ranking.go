// Package ranking orders airports by distance from a reference point or by
// how many distinct destinations they serve.
package ranking

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/unklstewy/flightwindow/internal/acquire"
	"github.com/unklstewy/flightwindow/internal/flights"
	"github.com/unklstewy/flightwindow/pkg/coordinates"
)

// NoUpcomingFlight marks an airport without any departure at or after now.
const NoUpcomingFlight int64 = math.MaxInt64

// AirportDistanceRecord is one origin airport and its distance from the
// reference point.
type AirportDistanceRecord struct {
	Code        string
	Name        string
	CountryName string
	DistanceKm  float64
	FlightCount int
}

// AirportDiversityRecord summarizes an airport's departures.
type AirportDiversityRecord struct {
	Code                     string
	Name                     string
	CountryName              string
	DistinctDestinationCount int
	TotalFlights             int
	NextFlightTimeMs         int64
	Destinations             map[string]struct{}
}

// HasUpcoming reports whether a future departure was found.
func (r AirportDiversityRecord) HasUpcoming() bool {
	return r.NextFlightTimeMs != NoUpcomingFlight
}

// ByDistance groups arrivals by origin airport and sorts the origins by
// great-circle distance from ref, nearest first. Arrivals without an origin
// code are ignored, as are origins for which no arrival carries coordinates.
func ByDistance(entries []flights.BackwardEntry, ref coordinates.Geographic) []AirportDistanceRecord {
	keys, groups := flights.GroupBy(entries, flights.OriginKey)

	var records []AirportDistanceRecord
	for _, code := range keys {
		if code == flights.UnknownKey {
			continue
		}
		group := groups[code]

		var origin *flights.Origin
		for i := range group {
			if group[i].Origin.Coordinates != nil {
				origin = &group[i].Origin
				break
			}
		}
		if origin == nil {
			continue
		}

		records = append(records, AirportDistanceRecord{
			Code:        code,
			Name:        firstNonEmpty(origin.Name, origin.CityName),
			CountryName: origin.CountryName,
			DistanceKm:  coordinates.DistanceKm(ref, *origin.Coordinates),
			FlightCount: len(group),
		})
	}

	slices.SortStableFunc(records, func(a, b AirportDistanceRecord) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	return records
}

// ByDiversity ranks airports by distinct destinations, most first. Ties go
// to the airport with the sooner next departure, then to the lower code.
// Boards without departures are skipped.
func ByDiversity(boards []acquire.DepartureBoard, now time.Time) []AirportDiversityRecord {
	nowMs := now.UnixMilli()

	var records []AirportDiversityRecord
	for _, b := range boards {
		if len(b.Departures) == 0 {
			continue
		}

		r := AirportDiversityRecord{
			Code:             b.Code,
			Name:             b.Name,
			CountryName:      b.CountryName,
			TotalFlights:     len(b.Departures),
			NextFlightTimeMs: NoUpcomingFlight,
			Destinations:     make(map[string]struct{}),
		}
		for _, d := range b.Departures {
			if k := flights.DestinationKey(d); k != "" {
				r.Destinations[k] = struct{}{}
			}
			if t := d.EventTimeMs; t >= nowMs && t < r.NextFlightTimeMs {
				r.NextFlightTimeMs = t
			}
		}
		r.DistinctDestinationCount = len(r.Destinations)
		records = append(records, r)
	}

	slices.SortFunc(records, func(a, b AirportDiversityRecord) int {
		return cmp.Or(
			cmp.Compare(b.DistinctDestinationCount, a.DistinctDestinationCount),
			cmp.Compare(a.NextFlightTimeMs, b.NextFlightTimeMs),
			cmp.Compare(a.Code, b.Code),
		)
	})
	return records
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

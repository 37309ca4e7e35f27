package flights

import (
	"github.com/unklstewy/flightwindow/pkg/coordinates"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

// DeriveStatus applies the status rule: arrived when a real arrival is
// known, departed when only a real departure is known, else scheduled.
func DeriveStatus(real provider.Times) Status {
	switch {
	case real.Arrival != nil:
		return StatusArrived
	case real.Departure != nil:
		return StatusDeparted
	default:
		return StatusScheduled
	}
}

// EventTimeMs picks the first known departure time in the order real,
// estimated, scheduled and converts it to milliseconds. It is 0 when no
// departure time is known.
func EventTimeMs(raw provider.ScheduleFlight) int64 {
	for _, t := range []*int64{
		raw.Time.Real.Departure,
		raw.Time.Estimated.Departure,
		raw.Time.Scheduled.Departure,
	} {
		if t != nil {
			return *t * 1000
		}
	}
	return 0
}

// NormalizeArrival converts a raw arrival at target into a BackwardEntry.
func NormalizeArrival(raw provider.ScheduleFlight, target string) BackwardEntry {
	e := BackwardEntry{
		Base:              scheduleBase(raw),
		TargetAirportCode: target,
	}
	if o := raw.Airport.Origin; o != nil {
		e.Origin.Place = place(o)
		if o.Position.Latitude != nil && o.Position.Longitude != nil {
			e.Origin.Coordinates = &coordinates.Geographic{
				Latitude:  *o.Position.Latitude,
				Longitude: *o.Position.Longitude,
			}
		}
	}
	return e
}

// NormalizeDeparture converts a raw departure into a ForwardEntry.
func NormalizeDeparture(raw provider.ScheduleFlight) ForwardEntry {
	e := ForwardEntry{Base: scheduleBase(raw)}
	if d := raw.Airport.Destination; d != nil {
		e.Destination = place(d)
	}
	return e
}

// NormalizeLive converts a live feed record into an AircraftEntry. Airborne
// aircraft are departed, aircraft on the ground are scheduled. The nearest
// reference is left for the caller to fill in.
func NormalizeLive(raw provider.LiveFlight) AircraftEntry {
	e := AircraftEntry{
		Base: Base{
			Live:        true,
			Status:      StatusDeparted,
			FlightCode:  raw.Number,
			EventTimeMs: raw.Timestamp * 1000,
		},
		OnGround:        raw.OnGround != 0,
		Registration:    raw.Registration,
		AircraftCode:    raw.AircraftCode,
		OriginCode:      raw.OriginIATA,
		DestinationCode: raw.DestinationIATA,
	}
	if e.FlightCode == "" {
		e.FlightCode = raw.Callsign
	}
	if e.OnGround {
		e.Status = StatusScheduled
	}
	if raw.Latitude != nil && raw.Longitude != nil {
		e.Coordinates = &coordinates.Geographic{
			Latitude:  *raw.Latitude,
			Longitude: *raw.Longitude,
		}
	}
	return e
}

func scheduleBase(raw provider.ScheduleFlight) Base {
	return Base{
		Live:        raw.Status.Live,
		Status:      DeriveStatus(raw.Time.Real),
		FlightCode:  raw.Identification.Number.Default,
		EventTimeMs: EventTimeMs(raw),
	}
}

func place(a *provider.AirportRef) Place {
	return Place{
		Name:        a.Name,
		CountryName: a.Position.Country.Name,
		IATACode:    a.Code.IATA,
		CityName:    a.Position.Region.City,
	}
}

// Package provider is a client for the FlightRadar24-style flight-data
// provider: airport schedules, the live flight feed, airport lookups and web
// search.
//
// Schedule pages are 1-based. Rate limiting is signalled with HTTP 429 and
// surfaced as *RateLimitError so callers can back off.
package provider

import (
	"context"
	"errors"

	"github.com/paulmach/orb"
)

// ErrAirportNotFound is returned by GetAirport for unknown airport codes.
var ErrAirportNotFound = errors.New("airport not found")

// Source is the interface the acquisition layer consumes.
// This abstraction allows replacing the HTTP client with fakes in tests.
type Source interface {
	// GetAirportDetails returns one page of an airport's arrival and
	// departure boards. page is 1-based.
	GetAirportDetails(ctx context.Context, code string, pageSize, page int) (*AirportDetails, error)

	// GetFlights returns live flights matching the filter.
	GetFlights(ctx context.Context, filter FlightFilter) ([]LiveFlight, error)

	// GetAirport returns the airport's position. Unknown codes yield
	// ErrAirportNotFound.
	GetAirport(ctx context.Context, code string) (*Airport, error)

	// Search runs a keyed web search, split into live and scheduled hits.
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// FlightFilter narrows the live feed. Empty fields are not applied.
type FlightFilter struct {
	// AircraftType is an ICAO type designator (e.g. "A388")
	AircraftType string

	// Airline is an ICAO airline code (e.g. "DLH")
	Airline string

	// Registration is an aircraft registration (e.g. "D-AIMA")
	Registration string

	// Bounds restricts results to a latitude/longitude box
	Bounds *orb.Bound
}

// AirportDetails is the schedule plugin payload of an airport page.
type AirportDetails struct {
	Schedule Schedule `json:"schedule"`
}

// Schedule holds both boards of an airport.
type Schedule struct {
	Arrivals   Board `json:"arrivals"`
	Departures Board `json:"departures"`
}

// Board is one page of arrivals or departures.
type Board struct {
	Page Page           `json:"page"`
	Data []ScheduleItem `json:"data"`
}

// Page describes pagination state reported by the provider.
type Page struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ScheduleItem wraps a single scheduled movement.
type ScheduleItem struct {
	Flight ScheduleFlight `json:"flight"`
}

// ScheduleFlight is a raw arrival or departure record.
type ScheduleFlight struct {
	Identification struct {
		ID       string `json:"id"`
		Callsign string `json:"callsign"`
		Number   struct {
			Default string `json:"default"`
		} `json:"number"`
	} `json:"identification"`

	Status struct {
		Live bool   `json:"live"`
		Text string `json:"text"`
	} `json:"status"`

	Aircraft struct {
		Registration string `json:"registration"`
		Model        struct {
			Code string `json:"code"`
			Text string `json:"text"`
		} `json:"model"`
	} `json:"aircraft"`

	Airport struct {
		Origin      *AirportRef `json:"origin"`
		Destination *AirportRef `json:"destination"`
	} `json:"airport"`

	Time struct {
		Scheduled Times `json:"scheduled"`
		Estimated Times `json:"estimated"`
		Real      Times `json:"real"`
	} `json:"time"`
}

// Times carries departure/arrival epoch seconds; nil means not known.
type Times struct {
	Departure *int64 `json:"departure"`
	Arrival   *int64 `json:"arrival"`
}

// AirportRef is an airport as embedded in schedule records.
type AirportRef struct {
	Name     string   `json:"name"`
	Code     Codes    `json:"code"`
	Position Position `json:"position"`
}

// Codes holds IATA and ICAO identifiers.
type Codes struct {
	IATA string `json:"iata"`
	ICAO string `json:"icao"`
}

// Position is a provider location with country and region metadata.
type Position struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Country   struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"country"`
	Region struct {
		City string `json:"city"`
	} `json:"region"`
}

// Airport is a resolved airport used as a distance reference.
type Airport struct {
	IATA        string
	ICAO        string
	Name        string
	CountryName string
	City        string
	Latitude    float64
	Longitude   float64
}

// LiveFlight is one aircraft from the live feed.
// Latitude/Longitude are nil when the feed entry carries no usable position.
type LiveFlight struct {
	ID              string
	ICAO24          string
	Latitude        *float64
	Longitude       *float64
	Heading         int
	Altitude        int
	GroundSpeed     int
	Squawk          string
	Radar           string
	AircraftCode    string
	Registration    string
	Timestamp       int64
	OriginIATA      string
	DestinationIATA string
	Number          string
	OnGround        int // 0 = airborne
	VerticalSpeed   int
	Callsign        string
	AirlineICAO     string
}

// SearchResult is the provider's web search split by hit type.
type SearchResult struct {
	Live     []SearchHit
	Schedule []SearchHit
}

// SearchHit is a single web search result.
type SearchHit struct {
	ID     string       `json:"id"`
	Label  string       `json:"label"`
	Type   string       `json:"type"`
	Match  string       `json:"match"`
	Detail SearchDetail `json:"detail"`
}

// SearchDetail carries flight-level fields of a search hit.
type SearchDetail struct {
	Operator     string   `json:"operator"`
	Registration string   `json:"reg"`
	Callsign     string   `json:"callsign"`
	Flight       string   `json:"flight"`
	Route        string   `json:"route"`
	AircraftType string   `json:"ac_type"`
	Latitude     *float64 `json:"lat"`
	Longitude    *float64 `json:"lon"`
	From         string   `json:"schd_from"`
	To           string   `json:"schd_to"`
}

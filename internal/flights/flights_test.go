package flights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

func ts(v int64) *int64 { return &v }

func fl(v float64) *float64 { return &v }

func rawFlight(number string, real, est, sched provider.Times) provider.ScheduleFlight {
	var raw provider.ScheduleFlight
	raw.Identification.Number.Default = number
	raw.Time.Real = real
	raw.Time.Estimated = est
	raw.Time.Scheduled = sched
	return raw
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name string
		real provider.Times
		want Status
	}{
		{"nothing real", provider.Times{}, StatusScheduled},
		{"real departure", provider.Times{Departure: ts(100)}, StatusDeparted},
		{"real arrival", provider.Times{Departure: ts(100), Arrival: ts(200)}, StatusArrived},
		{"real arrival only", provider.Times{Arrival: ts(200)}, StatusArrived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.real))
		})
	}
}

func TestEventTimeMs(t *testing.T) {
	all := rawFlight("X", provider.Times{Departure: ts(30)}, provider.Times{Departure: ts(20)}, provider.Times{Departure: ts(10)})
	assert.Equal(t, int64(30_000), EventTimeMs(all), "real departure wins")

	estimated := rawFlight("X", provider.Times{}, provider.Times{Departure: ts(20)}, provider.Times{Departure: ts(10)})
	assert.Equal(t, int64(20_000), EventTimeMs(estimated))

	scheduled := rawFlight("X", provider.Times{Arrival: ts(99)}, provider.Times{}, provider.Times{Departure: ts(10)})
	assert.Equal(t, int64(10_000), EventTimeMs(scheduled), "arrival times are never used")

	assert.Equal(t, int64(0), EventTimeMs(provider.ScheduleFlight{}))
}

func TestNormalizeArrival(t *testing.T) {
	raw := rawFlight("LH2", provider.Times{Departure: ts(1_700_000_300)}, provider.Times{}, provider.Times{Departure: ts(1_700_000_000)})
	raw.Status.Live = true
	raw.Airport.Origin = &provider.AirportRef{Code: provider.Codes{IATA: "FRA"}}
	raw.Airport.Origin.Position.Latitude = fl(50.0333)
	raw.Airport.Origin.Position.Longitude = fl(8.5706)
	raw.Airport.Origin.Position.Country.Name = "Germany"
	raw.Airport.Origin.Position.Region.City = "Frankfurt"

	e := NormalizeArrival(raw, "HAM")

	assert.Equal(t, "HAM", e.TargetAirportCode)
	assert.True(t, e.Live)
	assert.Equal(t, StatusDeparted, e.Status)
	assert.Equal(t, "LH2", e.FlightCode)
	assert.Equal(t, int64(1_700_000_300_000), e.EventTimeMs)
	assert.Equal(t, Place{CountryName: "Germany", IATACode: "FRA", CityName: "Frankfurt"}, e.Origin.Place)
	require.NotNil(t, e.Origin.Coordinates)
	assert.InDelta(t, 50.0333, e.Origin.Coordinates.Latitude, 1e-9)
	assert.Equal(t, "FRA", OriginKey(e))
}

func TestNormalizeArrivalMissingOrigin(t *testing.T) {
	e := NormalizeArrival(provider.ScheduleFlight{}, "HAM")

	assert.Equal(t, StatusScheduled, e.Status)
	assert.Empty(t, e.Origin.IATACode)
	assert.Nil(t, e.Origin.Coordinates)
	assert.Zero(t, e.EventTimeMs)
}

func TestNormalizeArrivalPartialPosition(t *testing.T) {
	raw := provider.ScheduleFlight{}
	raw.Airport.Origin = &provider.AirportRef{Code: provider.Codes{IATA: "MUC"}}
	raw.Airport.Origin.Position.Latitude = fl(48.35)

	e := NormalizeArrival(raw, "HAM")
	assert.Equal(t, "MUC", e.Origin.IATACode)
	assert.Nil(t, e.Origin.Coordinates, "half a position is no position")
}

func TestNormalizeDeparture(t *testing.T) {
	raw := rawFlight("EW7", provider.Times{Departure: ts(100), Arrival: ts(200)}, provider.Times{}, provider.Times{})
	raw.Airport.Destination = &provider.AirportRef{Code: provider.Codes{IATA: "PMI"}}
	raw.Airport.Destination.Position.Country.Name = "Spain"

	e := NormalizeDeparture(raw)

	assert.Equal(t, StatusArrived, e.Status)
	assert.Equal(t, "PMI", DestinationKey(e))
	assert.Equal(t, "Spain", e.Destination.CountryName)
	assert.Empty(t, e.Destination.CityName)

	assert.Empty(t, DestinationKey(NormalizeDeparture(provider.ScheduleFlight{})))
}

func TestNormalizeLive(t *testing.T) {
	raw := provider.LiveFlight{
		Latitude:        fl(53.6),
		Longitude:       fl(10.0),
		AircraftCode:    "A388",
		Registration:    "A6-EOA",
		Timestamp:       1_700_000_000,
		OriginIATA:      "HAM",
		DestinationIATA: "DXB",
		Callsign:        "UAE60",
	}

	e := NormalizeLive(raw)
	assert.True(t, e.Live)
	assert.False(t, e.OnGround)
	assert.Equal(t, StatusDeparted, e.Status)
	assert.Equal(t, "UAE60", e.FlightCode, "callsign fills in for a missing flight number")
	assert.Equal(t, int64(1_700_000_000_000), e.EventTimeMs)
	require.NotNil(t, e.Coordinates)
	assert.Equal(t, "DXB", e.DestinationCode)

	raw.OnGround = 1
	raw.Latitude = nil
	raw.Number = "EK60"
	e = NormalizeLive(raw)
	assert.True(t, e.OnGround)
	assert.Equal(t, StatusScheduled, e.Status)
	assert.Equal(t, "EK60", e.FlightCode)
	assert.Nil(t, e.Coordinates)
}

func TestGroupBy(t *testing.T) {
	entries := []ForwardEntry{
		{Base: Base{FlightCode: "1"}, Destination: Place{IATACode: "PMI"}},
		{Base: Base{FlightCode: "2"}},
		{Base: Base{FlightCode: "3"}, Destination: Place{IATACode: "LHR"}},
		{Base: Base{FlightCode: "4"}, Destination: Place{IATACode: "PMI"}},
	}

	keys, groups := GroupBy(entries, DestinationKey)

	assert.Equal(t, []string{"PMI", UnknownKey, "LHR"}, keys)
	require.Len(t, groups["PMI"], 2)
	assert.Equal(t, "1", groups["PMI"][0].FlightCode)
	assert.Equal(t, "4", groups["PMI"][1].FlightCode)
	assert.Len(t, groups[UnknownKey], 1)

	keys, groups = GroupBy[ForwardEntry](nil, DestinationKey)
	assert.Empty(t, keys)
	assert.Empty(t, groups)
}

func TestOnlyToday(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)

	at := func(code string, tm time.Time) BackwardEntry {
		return BackwardEntry{Base: Base{FlightCode: code, EventTimeMs: tm.UnixMilli()}}
	}
	entries := []BackwardEntry{
		at("yesterday", time.Date(2024, 3, 9, 23, 59, 0, 0, loc)),
		at("midnight", time.Date(2024, 3, 10, 0, 0, 0, 0, loc)),
		at("evening", time.Date(2024, 3, 10, 23, 30, 0, 0, loc)),
		at("tomorrow", time.Date(2024, 3, 11, 0, 0, 0, 0, loc)),
	}

	got := OnlyToday(entries, now)
	require.Len(t, got, 2)
	assert.Equal(t, "midnight", got[0].FlightCode)
	assert.Equal(t, "evening", got[1].FlightCode)

	assert.Empty(t, OnlyToday[BackwardEntry](nil, now))
}

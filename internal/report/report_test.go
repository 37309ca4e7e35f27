package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/unklstewy/flightwindow/internal/acquire"
	"github.com/unklstewy/flightwindow/internal/flights"
	"github.com/unklstewy/flightwindow/internal/ranking"
	"github.com/unklstewy/flightwindow/internal/window"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

func TestEmptyResultsPrintNothingFound(t *testing.T) {
	tests := []struct {
		name   string
		render func(*bytes.Buffer)
	}{
		{"windows", func(b *bytes.Buffer) {
			Windows[flights.ForwardEntry](b, "Best windows", nil, DescribeDeparture, time.UTC)
		}},
		{"distance", func(b *bytes.Buffer) { DistanceRanking(b, "HAM", nil) }},
		{"diversity", func(b *bytes.Buffer) { DiversityRanking(b, nil, time.UTC) }},
		{"aircraft", func(b *bytes.Buffer) { Aircraft(b, nil) }},
		{"routes", func(b *bytes.Buffer) { Routes(b, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.render(&buf)
			assert.Contains(t, buf.String(), NothingFound)
		})
	}
}

func TestWindows(t *testing.T) {
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	e := flights.ForwardEntry{Base: flights.Base{FlightCode: "EW7", EventTimeMs: start.UnixMilli()}}
	e.Destination = flights.Place{IATACode: "PMI", CityName: "Palma", CountryName: "Spain"}

	w := window.TimeWindow[flights.ForwardEntry]{
		StartMs:    start.UnixMilli(),
		EndMs:      start.UnixMilli() + window.LengthMs,
		UniqueKeys: map[string]struct{}{"PMI": {}},
		Members:    []flights.ForwardEntry{e},
	}

	var buf bytes.Buffer
	Windows(&buf, "Best windows", []window.TimeWindow[flights.ForwardEntry]{w}, DescribeDeparture, time.UTC)

	out := buf.String()
	assert.Contains(t, out, "12:00")
	assert.Contains(t, out, "12:30")
	assert.Contains(t, out, "1 distinct: PMI")
	assert.Contains(t, out, "EW7")
	assert.Contains(t, out, "(Palma, Spain)")
}

func TestDescribeArrival(t *testing.T) {
	e := flights.BackwardEntry{Base: flights.Base{FlightCode: "LH2", Status: flights.StatusArrived}}
	assert.Contains(t, DescribeArrival(e), "<- ?")
	assert.Contains(t, DescribeArrival(e), "[arrived]")

	e.Origin.IATACode = "FRA"
	e.Origin.CountryName = "Germany"
	assert.Contains(t, DescribeArrival(e), "<- FRA (Germany)")
}

func TestRankings(t *testing.T) {
	var buf bytes.Buffer
	DistanceRanking(&buf, "HAM", []ranking.AirportDistanceRecord{
		{Code: "FRA", Name: "Frankfurt", CountryName: "Germany", DistanceKm: 411.6, FlightCount: 3},
	})
	assert.Contains(t, buf.String(), "FRA")
	assert.Contains(t, buf.String(), "412 km")

	buf.Reset()
	DiversityRanking(&buf, []ranking.AirportDiversityRecord{
		{Code: "MUC", DistinctDestinationCount: 3, TotalFlights: 4, NextFlightTimeMs: ranking.NoUpcomingFlight},
	}, time.UTC)
	assert.Contains(t, buf.String(), "MUC")
	assert.Contains(t, buf.String(), "none")
}

func TestAircraftAndMissing(t *testing.T) {
	var buf bytes.Buffer
	Aircraft(&buf, []flights.AircraftEntry{{
		AircraftCode:     "A388",
		Registration:     "A6-EOA",
		OriginCode:       "HAM",
		NearestReference: flights.Reference{Code: "HAM", DistanceKm: 12.3},
	}})
	out := buf.String()
	assert.Contains(t, out, "A6-EOA")
	assert.Contains(t, out, "HAM--")
	assert.Contains(t, out, "12 km (7 nm)")

	buf.Reset()
	MissingTypes(&buf, nil)
	assert.Empty(t, buf.String())

	MissingTypes(&buf, []string{"A225", "B2"})
	assert.Contains(t, buf.String(), "A225, B2")
}

func TestRoutes(t *testing.T) {
	var buf bytes.Buffer
	Routes(&buf, []acquire.RouteResult{{
		From: "HAM", To: "DXB",
		Live:      []provider.SearchHit{{Label: "EK60"}},
		Scheduled: []provider.SearchHit{{Label: "EK62"}},
	}})
	assert.Contains(t, buf.String(), "EK60 EK62")
}

package acquire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unklstewy/flightwindow/pkg/config"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

func newTestFetcher(src provider.Source, delay time.Duration) *Fetcher {
	var delays []time.Duration
	return NewFetcher(src, delay, testRetryConfig(&delays), 50, discardLogger())
}

func TestFetchArrivalsPagesInOrder(t *testing.T) {
	src := newFakeSource()
	src.arrivals["HAM"] = [][]provider.ScheduleFlight{
		{scheduled("LH1", "FRA", "HAM", 100), scheduled("LH2", "MUC", "HAM", 200)},
		{scheduled("AF3", "CDG", "HAM", 50)},
		{scheduled("BA4", "LHR", "HAM", 300)},
	}

	entries, err := newTestFetcher(src, 0).FetchArrivals(context.Background(), "HAM")
	require.NoError(t, err)

	var codes []string
	for _, e := range entries {
		codes = append(codes, e.FlightCode)
		assert.Equal(t, "HAM", e.TargetAirportCode)
	}
	assert.Equal(t, []string{"LH1", "LH2", "AF3", "BA4"}, codes, "page order, not time order")
	assert.Equal(t, []string{"HAM/1", "HAM/2", "HAM/3"}, src.Calls())
}

func TestFetchDeparturesEmptyBoard(t *testing.T) {
	src := newFakeSource()

	entries, err := newTestFetcher(src, 0).FetchDepartures(context.Background(), "XXX")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, []string{"XXX/1"}, src.Calls(), "first page is always requested")
}

func TestFetchRetriesRateLimitedPage(t *testing.T) {
	src := newFakeSource()
	src.departures["HAM"] = [][]provider.ScheduleFlight{
		{scheduled("EW1", "HAM", "PMI", 100)},
		{scheduled("EW2", "HAM", "LPA", 200)},
	}
	src.failures["HAM/2"] = []error{errRateLimited}

	entries, err := newTestFetcher(src, 0).FetchDepartures(context.Background(), "HAM")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "LPA", entries[1].Destination.IATACode)
	assert.Equal(t, []string{"HAM/1", "HAM/2", "HAM/2"}, src.Calls())
}

func TestFetchAllArrivalsDegrades(t *testing.T) {
	src := newFakeSource()
	src.arrivals["HAM"] = [][]provider.ScheduleFlight{{scheduled("LH1", "FRA", "HAM", 100)}}
	src.arrivals["MUC"] = [][]provider.ScheduleFlight{{scheduled("LH2", "HAM", "MUC", 200)}}
	src.failures["BAD"] = []error{errors.New("connection reset")}

	entries := newTestFetcher(src, 0).FetchAllArrivals(context.Background(), []string{"HAM", "BAD", "MUC"})

	require.Len(t, entries, 2)
	assert.Equal(t, "HAM", entries[0].TargetAirportCode)
	assert.Equal(t, "MUC", entries[1].TargetAirportCode)
	assert.Equal(t, []string{"HAM/1", "BAD/1", "MUC/1"}, src.Calls(), "non-retryable failure is not retried")
}

func TestFetchAllArrivalsExhaustedRetries(t *testing.T) {
	src := newFakeSource()
	src.failures["HAM"] = []error{errRateLimited}
	src.arrivals["MUC"] = [][]provider.ScheduleFlight{{scheduled("LH2", "HAM", "MUC", 200)}}

	entries := newTestFetcher(src, 0).FetchAllArrivals(context.Background(), []string{"HAM", "MUC"})

	require.Len(t, entries, 1)
	assert.Equal(t, []string{"HAM/1", "HAM/1", "HAM/1", "MUC/1"}, src.Calls())
}

func TestFetchAllDepartures(t *testing.T) {
	src := newFakeSource()
	src.airports["HAM"] = &provider.Airport{IATA: "HAM", Name: "Hamburg Airport", CountryName: "Germany"}
	src.departures["HAM"] = [][]provider.ScheduleFlight{{scheduled("EW1", "HAM", "PMI", 100)}}

	boards := newTestFetcher(src, 0).FetchAllDepartures(context.Background(), []string{"HAM", "ZZZ"})

	require.Len(t, boards, 2)
	assert.Equal(t, "Hamburg Airport", boards[0].Name)
	assert.Equal(t, "Germany", boards[0].CountryName)
	assert.Len(t, boards[0].Departures, 1)
	assert.Equal(t, "ZZZ", boards[1].Code)
	assert.Empty(t, boards[1].Name)
	assert.Empty(t, boards[1].Departures)
}

func TestFetcherAirportNotFound(t *testing.T) {
	src := newFakeSource()

	_, err := newTestFetcher(src, 0).Airport(context.Background(), "XXX")
	assert.ErrorIs(t, err, provider.ErrAirportNotFound)
}

func TestFetcherPacesEveryCall(t *testing.T) {
	src := newFakeSource()
	src.arrivals["HAM"] = [][]provider.ScheduleFlight{{}, {}}
	src.arrivals["MUC"] = [][]provider.ScheduleFlight{{}}

	f := newTestFetcher(src, 25*time.Millisecond)

	start := time.Now()
	f.FetchAllArrivals(context.Background(), []string{"HAM", "MUC"})
	elapsed := time.Since(start)

	// Three calls, the first one immediate
	assert.Len(t, src.Calls(), 3)
	assert.GreaterOrEqual(t, elapsed, 45*time.Millisecond)
}

func TestNewFetcherFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	f := NewFetcherFromConfig(newFakeSource(), cfg.Acquisition, nil)

	assert.Equal(t, cfg.Acquisition.PageSize, f.pageSize)
	assert.Equal(t, cfg.Acquisition.MaxAttempts, f.retry.MaxAttempts)
	assert.NotNil(t, f.logger)
}

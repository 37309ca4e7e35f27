package acquire

import (
	"context"
	"fmt"
	"sync"

	"github.com/unklstewy/flightwindow/pkg/provider"
)

// fakeSource is an in-memory provider.Source.
type fakeSource struct {
	mu sync.Mutex

	// boards maps airport code to arrival pages (index 0 is page 1)
	arrivals   map[string][][]provider.ScheduleFlight
	departures map[string][][]provider.ScheduleFlight
	airports   map[string]*provider.Airport

	// failures maps "CODE/page" to errors returned in order before succeeding
	failures map[string][]error

	search func(query string) (*provider.SearchResult, error)

	calls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		arrivals:   map[string][][]provider.ScheduleFlight{},
		departures: map[string][][]provider.ScheduleFlight{},
		airports:   map[string]*provider.Airport{},
		failures:   map[string][]error{},
	}
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) GetAirportDetails(ctx context.Context, code string, pageSize, page int) (*provider.AirportDetails, error) {
	key := fmt.Sprintf("%s/%d", code, page)
	f.record(key)

	f.mu.Lock()
	if errs := f.failures[key]; len(errs) > 0 {
		f.failures[key] = errs[1:]
		f.mu.Unlock()
		return nil, errs[0]
	}
	if errs := f.failures[code]; len(errs) > 0 {
		f.mu.Unlock()
		return nil, errs[0]
	}
	f.mu.Unlock()

	d := &provider.AirportDetails{}
	d.Schedule.Arrivals = boardPage(f.arrivals[code], page)
	d.Schedule.Departures = boardPage(f.departures[code], page)
	return d, nil
}

func boardPage(pages [][]provider.ScheduleFlight, page int) provider.Board {
	b := provider.Board{Page: provider.Page{Current: page, Total: len(pages)}}
	if page >= 1 && page <= len(pages) {
		for _, fl := range pages[page-1] {
			b.Data = append(b.Data, provider.ScheduleItem{Flight: fl})
		}
	}
	return b
}

func (f *fakeSource) GetFlights(ctx context.Context, filter provider.FlightFilter) ([]provider.LiveFlight, error) {
	f.record("flights/" + filter.AircraftType)
	return nil, nil
}

func (f *fakeSource) GetAirport(ctx context.Context, code string) (*provider.Airport, error) {
	f.record("airport/" + code)
	if a, ok := f.airports[code]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%s: %w", code, provider.ErrAirportNotFound)
}

func (f *fakeSource) Search(ctx context.Context, query string) (*provider.SearchResult, error) {
	f.record("search/" + query)
	if f.search == nil {
		return &provider.SearchResult{}, nil
	}
	return f.search(query)
}

// scheduled builds a raw schedule record departing at sec from origin/destination.
func scheduled(number, origin, destination string, sec int64) provider.ScheduleFlight {
	var fl provider.ScheduleFlight
	fl.Identification.Number.Default = number
	fl.Time.Scheduled.Departure = &sec
	if origin != "" {
		fl.Airport.Origin = &provider.AirportRef{Code: provider.Codes{IATA: origin}}
	}
	if destination != "" {
		fl.Airport.Destination = &provider.AirportRef{Code: provider.Codes{IATA: destination}}
	}
	return fl
}

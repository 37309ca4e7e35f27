// Package acquire fetches flight data from the provider while staying under
// its rate limit: every call is paced, rate-limited calls are retried with
// exponential backoff, and failures degrade to empty results.
//
// All fetches here are sequential. The provider's limit is shared, so
// fanning out pagination would defeat the backoff.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/unklstewy/flightwindow/internal/flights"
	"github.com/unklstewy/flightwindow/pkg/config"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

// DepartureBoard is the departures of one airport, used by diversity ranking.
type DepartureBoard struct {
	Code        string
	Name        string
	CountryName string
	Departures  []flights.ForwardEntry
}

// Fetcher pages through airport schedules.
type Fetcher struct {
	source   provider.Source
	pacer    *rate.Limiter
	retry    RetryConfig
	pageSize int
	logger   *slog.Logger
}

// NewFetcher creates a fetcher that waits delay between any two provider
// calls. A zero delay disables pacing.
func NewFetcher(source provider.Source, delay time.Duration, retry RetryConfig, pageSize int, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 || pageSize > provider.MaxPageSize {
		pageSize = provider.MaxPageSize
	}
	if retry.Logger == nil {
		retry.Logger = logger
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &Fetcher{
		source:   source,
		pacer:    rate.NewLimiter(limit, 1),
		retry:    retry,
		pageSize: pageSize,
		logger:   logger,
	}
}

// NewFetcherFromConfig creates a fetcher from the acquisition settings.
func NewFetcherFromConfig(source provider.Source, a config.AcquisitionConfig, logger *slog.Logger) *Fetcher {
	return NewFetcher(source, a.DelayBetweenCalls(), NewRetryConfig(a, logger), a.PageSize, logger)
}

// FetchDepartures returns every departure of code across all schedule pages,
// in page order.
func (f *Fetcher) FetchDepartures(ctx context.Context, code string) ([]flights.ForwardEntry, error) {
	raw, err := f.fetchBoard(ctx, code, func(s provider.Schedule) provider.Board { return s.Departures })
	if err != nil {
		return nil, err
	}
	out := make([]flights.ForwardEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, flights.NormalizeDeparture(r))
	}
	return out, nil
}

// FetchArrivals returns every arrival at code across all schedule pages,
// in page order.
func (f *Fetcher) FetchArrivals(ctx context.Context, code string) ([]flights.BackwardEntry, error) {
	raw, err := f.fetchBoard(ctx, code, func(s provider.Schedule) provider.Board { return s.Arrivals })
	if err != nil {
		return nil, err
	}
	out := make([]flights.BackwardEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, flights.NormalizeArrival(r, code))
	}
	return out, nil
}

// FetchAllArrivals fetches the arrivals of each airport in turn and
// flattens them. An airport that fails yields nothing; the others are
// still fetched.
func (f *Fetcher) FetchAllArrivals(ctx context.Context, codes []string) []flights.BackwardEntry {
	var all []flights.BackwardEntry
	for _, code := range codes {
		if ctx.Err() != nil {
			break
		}
		entries, err := f.FetchArrivals(ctx, code)
		if err != nil {
			f.logger.Error("arrivals unavailable", "airport", code, "error", err)
			continue
		}
		f.logger.Info("fetched arrivals", "airport", code, "count", len(entries))
		all = append(all, entries...)
	}
	return all
}

// FetchAllDepartures fetches a departure board for each airport in turn.
// Airport names are looked up on a best-effort basis.
func (f *Fetcher) FetchAllDepartures(ctx context.Context, codes []string) []DepartureBoard {
	boards := make([]DepartureBoard, 0, len(codes))
	for _, code := range codes {
		if ctx.Err() != nil {
			break
		}
		board := DepartureBoard{Code: code}
		if a, err := f.Airport(ctx, code); err == nil {
			board.Name = a.Name
			board.CountryName = a.CountryName
		} else {
			f.logger.Warn("airport lookup failed", "airport", code, "error", err)
		}

		entries, err := f.FetchDepartures(ctx, code)
		if err != nil {
			f.logger.Error("departures unavailable", "airport", code, "error", err)
		} else {
			f.logger.Info("fetched departures", "airport", code, "count", len(entries))
		}
		board.Departures = entries
		boards = append(boards, board)
	}
	return boards
}

// Airport resolves an airport through the pacer and retry policy.
// Errors are returned to the caller; a missing reference airport is fatal
// for the commands that need one.
func (f *Fetcher) Airport(ctx context.Context, code string) (*provider.Airport, error) {
	return Retry(ctx, f.retry, func() (*provider.Airport, error) {
		if err := f.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("pacer: %w", err)
		}
		return f.source.GetAirport(ctx, code)
	})
}

// fetchBoard walks pages 1..total of one board. Each page is paced and
// retried on its own.
func (f *Fetcher) fetchBoard(ctx context.Context, code string, pick func(provider.Schedule) provider.Board) ([]provider.ScheduleFlight, error) {
	var out []provider.ScheduleFlight

	for page, total := 1, 1; page <= total; page++ {
		details, err := Retry(ctx, f.retry, func() (*provider.AirportDetails, error) {
			if err := f.pacer.Wait(ctx); err != nil {
				return nil, fmt.Errorf("pacer: %w", err)
			}
			return f.source.GetAirportDetails(ctx, code, f.pageSize, page)
		})
		if err != nil {
			return nil, fmt.Errorf("%s page %d: %w", code, page, err)
		}

		board := pick(details.Schedule)
		for _, item := range board.Data {
			out = append(out, item.Flight)
		}
		total = board.Page.Total

		f.logger.Debug("fetched schedule page", "airport", code, "page", page, "total", total, "rows", len(board.Data))
	}

	return out, nil
}

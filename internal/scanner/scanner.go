// Package scanner looks for live aircraft of given types and measures how far
// each one is from the nearest of a set of reference airports.
package scanner

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/unklstewy/flightwindow/internal/acquire"
	"github.com/unklstewy/flightwindow/internal/flights"
	"github.com/unklstewy/flightwindow/pkg/coordinates"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

// DefaultConcurrency is the number of aircraft types fetched at once.
const DefaultConcurrency = 5

// ErrNoReferences is returned by New when no reference airport is given.
var ErrNoReferences = errors.New("scanner: no reference airports")

// Options tunes a Scanner.
type Options struct {
	// Concurrency bounds in-flight provider requests (default: 5)
	Concurrency int

	// Bounds restricts the live feed to a box; nil searches everywhere
	Bounds *orb.Bound

	// Retry governs rate-limited feed requests
	Retry acquire.RetryConfig
}

// Result is the outcome of a scan.
type Result struct {
	// Aircraft are the positioned flights, nearest first
	Aircraft []flights.AircraftEntry

	// Missing are the requested types with no live flight, in request order
	Missing []string
}

// Scanner fetches live flights per aircraft type.
type Scanner struct {
	source      provider.Source
	refs        []provider.Airport
	concurrency int
	bounds      *orb.Bound
	retry       acquire.RetryConfig
	logger      *slog.Logger
}

// New creates a scanner measuring distances from refs.
func New(source provider.Source, refs []provider.Airport, opts Options, logger *slog.Logger) (*Scanner, error) {
	if len(refs) == 0 {
		return nil, ErrNoReferences
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = acquire.DefaultRetryConfig()
	}
	if opts.Retry.Logger == nil {
		opts.Retry.Logger = logger
	}

	return &Scanner{
		source:      source,
		refs:        slices.Clone(refs),
		concurrency: opts.Concurrency,
		bounds:      opts.Bounds,
		retry:       opts.Retry,
		logger:      logger,
	}, nil
}

// Scan fetches every requested type with at most the configured number of
// requests in flight. A type whose fetch fails is treated as not flying.
// Flights without a position are not reported but still count as observed.
func (s *Scanner) Scan(ctx context.Context, types []string) (Result, error) {
	requested := normalizeTypes(types)
	perType := make([][]provider.LiveFlight, len(requested))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, typ := range requested {
		eg.Go(func() error {
			filter := provider.FlightFilter{AircraftType: typ, Bounds: s.bounds}
			perType[i] = acquire.FetchWithRetry(egCtx, s.retry, s.logger, "live flights "+typ, func() ([]provider.LiveFlight, error) {
				return s.source.GetFlights(egCtx, filter)
			})
			s.logger.Debug("fetched live flights", "type", typ, "count", len(perType[i]))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("scan cancelled: %w", err)
	}

	var res Result
	observed := make(map[string]bool)
	for i, live := range perType {
		for _, lf := range live {
			e := flights.NormalizeLive(lf)
			if e.AircraftCode == "" {
				e.AircraftCode = requested[i]
			}
			observed[strings.ToUpper(e.AircraftCode)] = true

			if e.Coordinates == nil || !e.Coordinates.Valid() {
				continue
			}
			e.NearestReference = s.nearest(*e.Coordinates)
			res.Aircraft = append(res.Aircraft, e)
		}
	}

	slices.SortStableFunc(res.Aircraft, func(a, b flights.AircraftEntry) int {
		return cmp.Compare(a.NearestReference.DistanceKm, b.NearestReference.DistanceKm)
	})

	for _, typ := range requested {
		if !observed[typ] {
			res.Missing = append(res.Missing, typ)
		}
	}
	return res, nil
}

func (s *Scanner) nearest(pos coordinates.Geographic) flights.Reference {
	var best flights.Reference
	for i, ref := range s.refs {
		at := coordinates.Geographic{Latitude: ref.Latitude, Longitude: ref.Longitude}
		d := coordinates.DistanceKm(at, pos)
		if i == 0 || d < best.DistanceKm {
			best = flights.Reference{
				Name:       ref.Name,
				Code:       ref.IATA,
				DistanceKm: d,
				BearingDeg: coordinates.Bearing(at, pos),
			}
		}
	}
	return best
}

// normalizeTypes trims, upper-cases and de-duplicates type codes, keeping
// the first occurrence.
func normalizeTypes(types []string) []string {
	seen := make(map[string]bool, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

package acquire

import (
	"context"
	"log/slog"
	"strings"

	"github.com/unklstewy/flightwindow/pkg/provider"
)

// RouteResult holds the flights found between two airports.
type RouteResult struct {
	From      string
	To        string
	Live      []provider.SearchHit
	Scheduled []provider.SearchHit
}

// Total returns the number of hits of both kinds.
func (r RouteResult) Total() int {
	return len(r.Live) + len(r.Scheduled)
}

// RouteFinder looks up flights for every source/target pair, pacing calls
// with an adaptive throttle.
type RouteFinder struct {
	source      provider.Source
	throttle    *AdaptiveThrottle
	maxAttempts int
	logger      *slog.Logger
}

// NewRouteFinder creates a route finder. maxAttempts bounds the tries per
// pair when the provider rate limits.
func NewRouteFinder(source provider.Source, throttle *AdaptiveThrottle, maxAttempts int, logger *slog.Logger) *RouteFinder {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RouteFinder{
		source:      source,
		throttle:    throttle,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Find searches each from/to pair in order and returns the pairs with at
// least one hit. Identical codes are skipped. A failed pair is logged and
// contributes nothing.
func (rf *RouteFinder) Find(ctx context.Context, from, to []string) []RouteResult {
	var results []RouteResult

	for _, src := range from {
		for _, dst := range to {
			if strings.EqualFold(src, dst) {
				continue
			}
			if ctx.Err() != nil {
				return results
			}

			res, ok := rf.search(ctx, src, dst)
			if !ok || res.Total() == 0 {
				continue
			}
			rf.logger.Info("route found", "from", src, "to", dst, "live", len(res.Live), "scheduled", len(res.Scheduled))
			results = append(results, res)
		}
	}

	return results
}

func (rf *RouteFinder) search(ctx context.Context, src, dst string) (RouteResult, bool) {
	query := strings.ToUpper(src) + "-" + strings.ToUpper(dst)

	for attempt := 1; attempt <= rf.maxAttempts; attempt++ {
		if err := rf.throttle.Wait(ctx); err != nil {
			return RouteResult{}, false
		}

		sr, err := rf.source.Search(ctx, query)
		if err == nil {
			return RouteResult{From: src, To: dst, Live: sr.Live, Scheduled: sr.Schedule}, true
		}

		if _, limited := provider.IsRateLimitError(err); !limited {
			rf.logger.Error("route search failed", "query", query, "error", err)
			return RouteResult{}, false
		}
		rf.throttle.RecordRateLimit()
		rf.logger.Warn("rate limited", "query", query, "attempt", attempt, "delay", rf.throttle.Current())
	}

	rf.logger.Error("route search gave up", "query", query, "attempts", rf.maxAttempts)
	return RouteResult{}, false
}

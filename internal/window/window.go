// Package window finds the 30-minute intervals with the most distinct
// destinations or origins.
package window

import (
	"cmp"
	"slices"
	"sort"
	"time"

	"github.com/unklstewy/flightwindow/internal/flights"
)

const (
	// Length is the size of a window.
	Length = 30 * time.Minute

	// LengthMs is Length in milliseconds.
	LengthMs = int64(Length / time.Millisecond)

	// PastTolerance is how far in the past a window may start.
	PastTolerance = Length / 2
)

// TimeWindow is a fixed-length interval and the entries inside it.
// EndMs is always StartMs + LengthMs and Members are ordered by event time.
type TimeWindow[T flights.Timed] struct {
	StartMs    int64
	EndMs      int64
	UniqueKeys map[string]struct{}
	Members    []T
}

// Diversity is the number of distinct keys in the window.
func (w TimeWindow[T]) Diversity() int {
	return len(w.UniqueKeys)
}

// Start returns the window start in loc.
func (w TimeWindow[T]) Start(loc *time.Location) time.Time {
	return time.UnixMilli(w.StartMs).In(loc)
}

// End returns the window end in loc.
func (w TimeWindow[T]) End(loc *time.Location) time.Time {
	return time.UnixMilli(w.EndMs).In(loc)
}

// Summary returns the window's keys in sorted order.
func Summary[T flights.Timed](w TimeWindow[T]) []string {
	keys := make([]string, 0, len(w.UniqueKeys))
	for k := range w.UniqueKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FindBest returns every window that reaches the highest number of distinct
// keys. Each entry that is at most PastTolerance older than now starts a
// candidate window covering all entries up to LengthMs after it. Entries
// with an empty key are members but do not count toward diversity. Windows
// without any key are never returned.
//
// The search is quadratic in the number of entries, which stays in the
// hundreds for a day of one airport's traffic.
func FindBest[T flights.Timed](entries []T, key func(T) string, now time.Time) []TimeWindow[T] {
	if len(entries) == 0 {
		return nil
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return cmp.Compare(a.EventTime(), b.EventTime())
	})

	earliest := now.Add(-PastTolerance).UnixMilli()
	best := 0
	var windows []TimeWindow[T]

	for i := range sorted {
		start := sorted[i].EventTime()
		if start < earliest {
			continue
		}

		w := TimeWindow[T]{
			StartMs:    start,
			EndMs:      start + LengthMs,
			UniqueKeys: make(map[string]struct{}),
		}
		for j := i; j < len(sorted) && sorted[j].EventTime() <= w.EndMs; j++ {
			w.Members = append(w.Members, sorted[j])
			if k := key(sorted[j]); k != "" {
				w.UniqueKeys[k] = struct{}{}
			}
		}

		switch d := w.Diversity(); {
		case d > best:
			best = d
			windows = []TimeWindow[T]{w}
		case d == best && d > 0:
			windows = append(windows, w)
		}
	}

	return windows
}

package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/unklstewy/flightwindow/pkg/config"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

// RetryConfig configures retry behavior with exponential backoff.
// Only rate-limit errors are retried.
type RetryConfig struct {
	// MaxAttempts is the total number of calls, first one included (default: 3)
	MaxAttempts int

	// BaseDelay is the delay before the first retry (default: 2 seconds)
	BaseDelay time.Duration

	// MaxDelay is the maximum backoff delay (default: 60 seconds)
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier (default: 2.0 for exponential)
	Multiplier float64

	// RespectRetryAfter waits for the provider's Retry-After when it is
	// longer than the computed backoff (default: true)
	RespectRetryAfter bool

	// Sleep waits between attempts. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// Logger receives rate limit details. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BaseDelay:         2 * time.Second,
		MaxDelay:          60 * time.Second,
		Multiplier:        2.0,
		RespectRetryAfter: true,
	}
}

// NewRetryConfig builds a RetryConfig from the acquisition settings.
func NewRetryConfig(a config.AcquisitionConfig, logger *slog.Logger) RetryConfig {
	cfg := DefaultRetryConfig()
	if a.MaxAttempts > 0 {
		cfg.MaxAttempts = a.MaxAttempts
	}
	if a.BaseBackoffMs > 0 {
		cfg.BaseDelay = time.Duration(a.BaseBackoffMs) * time.Millisecond
	}
	if a.MaxBackoffMs > 0 {
		cfg.MaxDelay = time.Duration(a.MaxBackoffMs) * time.Millisecond
	}
	if a.BackoffMultiplier >= 1 {
		cfg.Multiplier = a.BackoffMultiplier
	}
	cfg.Logger = logger
	return cfg
}

// Backoff returns the delay before retry k (k >= 1):
// min(BaseDelay * Multiplier^(k-1), MaxDelay).
func (cfg RetryConfig) Backoff(k int) time.Duration {
	d := time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(k-1)))
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return d
}

// Retry executes fn, retrying with exponential backoff while it fails with a
// rate-limit error. Any other error is returned immediately.
//
// Example usage:
//
//	details, err := Retry(ctx, cfg, func() (*provider.AirportDetails, error) {
//	    return source.GetAirportDetails(ctx, "HAM", 100, 1)
//	})
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("retry cancelled: %w", err)
		}

		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err

		rle, ok := provider.IsRateLimitError(err)
		if !ok {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		delay := cfg.Backoff(attempt)
		if cfg.RespectRetryAfter && rle.RetryAfter > delay {
			delay = rle.RetryAfter
		}

		attrs := []any{"attempt", attempt, "delay", delay}
		if rle.Headers.Remaining >= 0 {
			attrs = append(attrs, "remaining", rle.Headers.Remaining, "limit", rle.Headers.Limit)
		}
		logger.Warn("rate limited, backing off", attrs...)

		if err := sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("retry cancelled: %w", err)
		}
	}

	return zero, fmt.Errorf("max attempts (%d) exceeded: %w", attempts, lastErr)
}

// FetchWithRetry runs fn through Retry and degrades any failure to an empty
// result. The failure is logged with what as context; callers treat empty as
// "no data" and carry on.
func FetchWithRetry[T any](ctx context.Context, cfg RetryConfig, logger *slog.Logger, what string, fn func() ([]T, error)) []T {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	res, err := Retry(ctx, cfg, fn)
	if err != nil {
		logger.Error("fetch failed", "what", what, "error", err)
		return nil
	}
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

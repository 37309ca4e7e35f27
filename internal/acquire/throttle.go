package acquire

import (
	"context"
	"time"

	"github.com/unklstewy/flightwindow/pkg/config"
)

// AdaptiveThrottle is a self-tuning inter-call delay. It grows after the
// provider signals rate limiting and decays back toward a floor otherwise.
//
// It tracks the provider's global rate-limit posture for one run, so a single
// instance is shared by every call of that run. It is not safe for
// concurrent use.
type AdaptiveThrottle struct {
	floor    time.Duration
	cap      time.Duration
	cooldown time.Duration
	decay    float64

	current       time.Duration
	lastRateLimit time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewAdaptiveThrottle creates a throttle starting at the floor delay.
func NewAdaptiveThrottle(cfg config.AdaptiveConfig) *AdaptiveThrottle {
	t := &AdaptiveThrottle{
		floor:    time.Duration(cfg.FloorDelayMs) * time.Millisecond,
		cap:      time.Duration(cfg.CapDelayMs) * time.Millisecond,
		cooldown: time.Duration(cfg.CooldownMs) * time.Millisecond,
		decay:    cfg.DecayFactor,
		now:      time.Now,
		sleep:    sleepContext,
	}
	if t.cap < t.floor {
		t.cap = t.floor
	}
	if t.decay <= 0 || t.decay > 1 {
		t.decay = 0.9
	}
	t.current = t.floor
	return t
}

// Current returns the delay the throttle has settled on.
func (t *AdaptiveThrottle) Current() time.Duration {
	return t.current
}

// RecordRateLimit doubles the delay, up to the cap, and starts a cooldown.
func (t *AdaptiveThrottle) RecordRateLimit() {
	next := t.current * 2
	if next == 0 {
		next = time.Second
	}
	t.current = min(next, t.cap)
	t.lastRateLimit = t.now()
}

// NextDelay computes the delay before the next call. Within the cooldown
// after a rate limit the delay keeps growing by half; afterwards it decays
// toward the floor.
func (t *AdaptiveThrottle) NextDelay() time.Duration {
	if !t.lastRateLimit.IsZero() && t.now().Sub(t.lastRateLimit) < t.cooldown {
		t.current = min(time.Duration(float64(t.current)*1.5), t.cap)
	} else {
		t.current = max(time.Duration(float64(t.current)*t.decay), t.floor)
	}
	return t.current
}

// Wait sleeps for NextDelay or until ctx is done.
func (t *AdaptiveThrottle) Wait(ctx context.Context) error {
	return t.sleep(ctx, t.NextDelay())
}

package provider

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// RateLimitError represents an HTTP 429 rate limit error with retry information.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
	Headers    RateLimitHeaders
}

// RateLimitHeaders contains rate limit information from response headers.
type RateLimitHeaders struct {
	Limit     int       // X-Rate-Limit-Limit: Maximum requests allowed
	Remaining int       // X-Rate-Limit-Remaining: Requests remaining in current window
	Reset     time.Time // X-Rate-Limit-Reset: When the rate limit resets
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%d %s (retry after %v)", e.StatusCode, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// opaqueRateLimit matches a 429 that reads as an HTTP status, not as any
// number that happens to be 429 (a page number, a count).
var opaqueRateLimit = regexp.MustCompile(`(?i)\bstatus(?: code)?:?\s*429\b|\b429 too many requests\b`)

// IsRateLimitError checks if an error signals rate limiting.
// Wrapped *RateLimitError values are unwrapped; any other error whose text
// reports status 429 is treated as a rate limit without retry information.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	if err == nil {
		return nil, false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	if opaqueRateLimit.MatchString(err.Error()) {
		return &RateLimitError{
			StatusCode: http.StatusTooManyRequests,
			Message:    err.Error(),
			Headers:    RateLimitHeaders{Limit: -1, Remaining: -1},
		}, true
	}
	return nil, false
}

func newRateLimitError(resp *http.Response) *RateLimitError {
	return &RateLimitError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header),
		Message:    "Rate limit exceeded",
		Headers:    extractRateLimitHeaders(resp.Header),
	}
}

// parseRetryAfter extracts the Retry-After header value.
// Returns the duration to wait, or 0 if header is not present.
// Supports both delay-seconds (integer) and HTTP-date formats.
//
// Examples:
//
//	Retry-After: 30                            -> 30 seconds
//	Retry-After: Wed, 21 Oct 2015 07:28:00 GMT -> duration until that time
func parseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(retryTime); d > 0 {
			return d
		}
	}

	return 0
}

// extractRateLimitHeaders extracts common rate limit headers from the response.
// Both X-Rate-Limit-* and X-RateLimit-* spellings are accepted.
func extractRateLimitHeaders(headers http.Header) RateLimitHeaders {
	rlh := RateLimitHeaders{
		Limit:     -1,
		Remaining: -1,
	}

	if v, ok := headerInt(headers, "X-Rate-Limit-Limit", "X-RateLimit-Limit"); ok {
		rlh.Limit = int(v)
	}
	if v, ok := headerInt(headers, "X-Rate-Limit-Remaining", "X-RateLimit-Remaining"); ok {
		rlh.Remaining = int(v)
	}
	if v, ok := headerInt(headers, "X-Rate-Limit-Reset", "X-RateLimit-Reset"); ok {
		rlh.Reset = time.Unix(v, 0)
	}

	return rlh
}

func headerInt(headers http.Header, names ...string) (int64, bool) {
	for _, name := range names {
		if raw := headers.Get(name); raw != "" {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Sentinel errors classifying upstream failures. Callers decide retry
// behavior from these markers, never from HTTP details.
var (
	// ErrRateLimited signals the upstream asked us to back off. Use
	// RetryAfter to read the requested delay.
	ErrRateLimited = errors.New("rate limited")
	// ErrTransient covers server errors and network failures worth retrying.
	ErrTransient = errors.New("transient upstream failure")
	// ErrPermanent covers client errors (bad id, not found, unauthorized)
	// that retrying cannot fix.
	ErrPermanent = errors.New("permanent upstream failure")
)

// RateLimitError carries the upstream's requested delay.
type RateLimitError struct {
	Delay time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.Delay)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RetryAfter extracts the delay from a rate-limit error. The boolean is
// false when err is not rate-limit classified.
func RetryAfter(err error) (time.Duration, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.Delay, true
	}
	if errors.Is(err, ErrRateLimited) {
		return 0, true
	}
	return 0, false
}

// classifyStatus maps an HTTP response status to the error taxonomy.
func classifyStatus(status int, retryAfterHeader, operation string) error {
	switch {
	case status == http.StatusTooManyRequests:
		delay := time.Duration(0)
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil && seconds > 0 {
			delay = time.Duration(seconds) * time.Second
		}
		return fmt.Errorf("%s returned %d: %w", operation, status, &RateLimitError{Delay: delay})
	case status >= 500:
		return fmt.Errorf("%s returned %d: %w", operation, status, ErrTransient)
	default:
		return fmt.Errorf("%s returned %d: %w", operation, status, ErrPermanent)
	}
}

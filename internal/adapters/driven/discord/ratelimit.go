package discord

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the proactive throttle rate in requests per second.
	// Well below the per-route message-history bucket, so steady-state
	// traversal never provokes a 429.
	ProactiveRate = 0.9

	// MinRemaining is the remaining-request floor below which the limiter
	// waits for the bucket reset instead of spending the reserve.
	MinRemaining = 2

	// HeaderRateRemaining is the requests-left-in-bucket header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateResetAfter is the seconds-until-bucket-reset header.
	HeaderRateResetAfter = "X-RateLimit-Reset-After"

	// HeaderRateGlobal marks a bot-wide limit on a 429 response.
	HeaderRateGlobal = "X-RateLimit-Global"

	// HeaderRetryAfter is the mandatory back-off header on a 429 (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter implements dual-strategy rate limiting for the Discord API:
// a proactive token bucket paced under the per-route quota, plus reactive
// tracking of the bucket headers every response carries.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	bucket    *rate.Limiter
}

// NewRateLimiter creates a rate limiter with proactive throttling.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		remaining: MinRemaining + 1, // assume headroom until headers say otherwise
		bucket:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// Wait blocks until it is safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	r.mu.Unlock()

	if remaining < MinRemaining && time.Now().Before(resetTime) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetTime)):
		}
	}
	return nil
}

// UpdateFromResponse records the bucket state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}
	if resetAfter := resp.Header.Get(HeaderRateResetAfter); resetAfter != "" {
		if secs, err := strconv.ParseFloat(resetAfter, 64); err == nil {
			r.resetTime = time.Now().Add(time.Duration(secs * float64(time.Second)))
		}
	}
}

// CheckRateLimit inspects a response for a 429 and returns a RateLimitError
// carrying the API's requested back-off, or nil.
func (r *RateLimiter) CheckRateLimit(resp *http.Response, route string) error {
	if resp == nil {
		return nil
	}

	r.UpdateFromResponse(resp)

	if resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	after := time.Second
	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if secs, err := strconv.ParseFloat(retryAfter, 64); err == nil {
			after = time.Duration(secs * float64(time.Second))
		}
	}

	r.mu.Lock()
	r.remaining = 0
	r.resetTime = time.Now().Add(after)
	r.mu.Unlock()

	return &RateLimitError{
		After:  after,
		Global: resp.Header.Get(HeaderRateGlobal) == "true",
		Route:  route,
	}
}

// Remaining returns the last observed remaining-request count.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

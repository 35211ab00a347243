package discord

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
)

// APIError represents a non-2xx Discord API response.
type APIError struct {
	StatusCode int
	Message    string
	Route      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: API error %d on %s: %s", e.StatusCode, e.Route, e.Message)
}

// Unwrap classifies the error for the retry policy. Auth and missing-resource
// failures are permanent; everything else a retry might fix.
func (e *APIError) Unwrap() []error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return []error{domain.ErrPermanent, domain.ErrAuthRequired}
	case http.StatusNotFound:
		return []error{domain.ErrPermanent, domain.ErrChannelNotFound}
	case http.StatusForbidden:
		return []error{domain.ErrPermanent}
	default:
		return []error{domain.ErrTransient}
	}
}

// RateLimitError represents a 429 response.
type RateLimitError struct {
	// After is how long the API asked us to back off.
	After time.Duration

	// Global marks a bot-wide limit rather than a per-route one.
	Global bool

	Route string
}

func (e *RateLimitError) Error() string {
	scope := "route"
	if e.Global {
		scope = "global"
	}
	return fmt.Sprintf("discord: %s rate limit on %s, retry after %s", scope, e.Route, e.After)
}

// Unwrap marks rate limits as retryable.
func (e *RateLimitError) Unwrap() error { return domain.ErrTransient }

// RetryAfter exposes the API's requested delay to the retry loop.
func (e *RateLimitError) RetryAfter() time.Duration { return e.After }

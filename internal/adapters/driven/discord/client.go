package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
)

const (
	// DefaultBaseURL is the Discord REST API root.
	DefaultBaseURL = "https://discord.com/api/v10"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the API maximum for the messages endpoint.
	MaxPageSize = 100
)

// Client is an authenticated Discord REST client.
type Client struct {
	http        *http.Client
	baseURL     string
	token       string
	rateLimiter *RateLimiter
	userAgent   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// NewClient creates a client authenticating with the given bot token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("discord: %w: set the bot token", domain.ErrAuthRequired)
	}
	c := &Client{
		http:        &http.Client{Timeout: DefaultTimeout},
		baseURL:     DefaultBaseURL,
		token:       token,
		rateLimiter: NewRateLimiter(),
		userAgent:   "fragvis (https://github.com/fragvis/fragvis-cli, 1.0)",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RateLimiter returns the client's rate limiter.
func (c *Client) RateLimiter() *RateLimiter { return c.rateLimiter }

// get performs a rate-limited GET against route and decodes the JSON body
// into out. Non-2xx responses become typed errors carrying the retry class.
func (c *Client) get(ctx context.Context, route string, query url.Values, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + route
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrTransient, route, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.rateLimiter.CheckRateLimit(resp, route); err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
			Route:      route,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrTransient, route, err)
	}
	return nil
}

// readErrorMessage extracts the human-readable message from an error body.
func readErrorMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	if jsonErr := json.Unmarshal(raw, &payload); jsonErr == nil && payload.Message != "" {
		return payload.Message
	}
	return string(raw)
}

// ValidateCredentials checks the token by fetching the bot's own user.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := c.get(ctx, "/users/@me", nil, &me); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: the bot token was rejected", domain.ErrAuthRequired)
		}
		return err
	}
	return nil
}

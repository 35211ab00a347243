package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/logger"
)

// RetryPolicy bounds the backoff behaviour of Retry.
type RetryPolicy struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the first retry; subsequent retries
	// double it, plus up to one BaseDelay of jitter.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay. Explicit retry-after hints from the
	// remote side may exceed the cap.
	MaxDelay time.Duration
}

// DefaultRetryPolicy matches the platform's observed rate-limit windows.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 5,
	BaseDelay:   time.Second,
	MaxDelay:    time.Minute,
}

// retryHinter is implemented by errors that carry an explicit wait duration,
// such as rate-limit responses.
type retryHinter interface {
	RetryAfter() time.Duration
}

// Retry invokes op, retrying transient failures with exponential backoff and
// jitter. Permanent failures propagate immediately. Context cancellation is
// honoured both between attempts and, via ctx, inside op. After exhausting
// attempts the last transient error is returned wrapped.
func Retry(ctx context.Context, policy RetryPolicy, op func(context.Context) error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !domain.IsTransient(err) {
			return err
		}
		lastErr = err

		if attempt == policy.MaxAttempts-1 {
			break
		}

		delay := backoffDelay(policy, attempt)
		if hint := retryAfterHint(err); hint > delay {
			delay = hint
		}
		logger.Debug("transient failure (attempt %d/%d), retrying in %s: %v",
			attempt+1, policy.MaxAttempts, delay, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("retry: %d attempts exhausted: %w", policy.MaxAttempts, lastErr)
}

// backoffDelay computes base*2^attempt plus up to one base of jitter,
// capped at MaxDelay.
func backoffDelay(policy RetryPolicy, attempt int) time.Duration {
	delay := policy.BaseDelay << uint(attempt)
	if policy.MaxDelay > 0 && delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	if policy.BaseDelay > 0 {
		delay += time.Duration(rand.Int63n(int64(policy.BaseDelay)))
	}
	return delay
}

// retryAfterHint extracts an explicit wait duration from err, if any.
func retryAfterHint(err error) time.Duration {
	var hinter retryHinter
	if errors.As(err, &hinter) {
		return hinter.RetryAfter()
	}
	return 0
}

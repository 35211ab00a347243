package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrTransient marks a remote failure expected to resolve itself after
	// waiting (rate limiting, network blip, server error). Adapters wrap
	// transient failures with this sentinel so the retry helper can back off.
	ErrTransient = errors.New("transient failure")

	// ErrPermanent marks a remote failure that retrying cannot fix
	// (permission denied, deleted channel, invalid token).
	ErrPermanent = errors.New("permanent failure")

	// ErrCorruptState indicates a persisted registry or checkpoint file could
	// not be parsed. Fatal at startup: proceeding would risk re-exporting
	// already-seen questions or reprocessing checkpointed history.
	ErrCorruptState = errors.New("corrupt persisted state")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAuthRequired indicates no platform token was provided.
	ErrAuthRequired = errors.New("authentication required")

	// ErrChannelNotFound indicates the channel does not exist or is not
	// visible to the authenticated account.
	ErrChannelNotFound = errors.New("channel not found")
)

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsPermanent reports whether err must be propagated without retry.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

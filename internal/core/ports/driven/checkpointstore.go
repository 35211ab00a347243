package driven

// CheckpointStore persists, per channel, the identifier of the last
// successfully processed message. Implementations load state once at
// construction; Get never blocks on I/O afterwards.
type CheckpointStore interface {
	// Get returns the last committed cursor for a channel.
	// ok is false when the channel has never been checkpointed.
	Get(channelID string) (lastMessageID string, ok bool)

	// Advance records a new cursor position for a channel. Positions that do
	// not strictly increase (in platform ID ordering) are ignored, keeping
	// the cursor monotone across any sequence of runs.
	Advance(channelID, messageID string)

	// Flush durably persists the current cursors using a
	// write-temporary-then-rename discipline.
	Flush() error

	// Close flushes and releases resources.
	Close() error
}

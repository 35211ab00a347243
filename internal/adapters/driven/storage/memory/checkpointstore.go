package memory

import (
	"sync"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
)

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore is an in-memory implementation of driven.CheckpointStore.
type CheckpointStore struct {
	mu      sync.Mutex
	cursors map[string]string
	flushes int
}

// NewCheckpointStore creates a new in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{cursors: make(map[string]string)}
}

// Get returns the last recorded cursor for a channel.
func (s *CheckpointStore) Get(channelID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursor, ok := s.cursors[channelID]
	return cursor, ok
}

// Advance records a new cursor position, ignoring non-increasing ones.
func (s *CheckpointStore) Advance(channelID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.cursors[channelID]; ok && !domain.NewerID(messageID, current) {
		return
	}
	s.cursors[channelID] = messageID
}

// Flush counts invocations so tests can assert flush ordering happened.
func (s *CheckpointStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

// Flushes returns how many times Flush was called.
func (s *CheckpointStore) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// Close is a no-op.
func (s *CheckpointStore) Close() error { return nil }

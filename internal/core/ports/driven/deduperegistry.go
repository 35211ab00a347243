package driven

// DedupeRegistry is the set of digests of previously exported questions.
// The whole set lives in memory; Contains and Add are O(1). Implementations
// must be safe for concurrent use: Add performs an atomic check-and-insert,
// so two tasks racing on the same key cannot both observe "new".
type DedupeRegistry interface {
	// Contains reports whether key has already been exported.
	Contains(key string) bool

	// Add inserts key and reports whether it was newly inserted.
	// False means the key was already present.
	Add(key string) bool

	// Len returns the number of keys in the set.
	Len() int

	// Flush durably persists the full set using a
	// write-temporary-then-rename discipline.
	Flush() error

	// Close flushes and releases resources.
	Close() error
}

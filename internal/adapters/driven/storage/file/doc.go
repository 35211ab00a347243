// Package file implements the persistence ports on flat files.
//
// All state rewrites use a write-temporary-then-rename discipline so a crash
// mid-write leaves the previous file intact:
//
//   - CheckpointStore: JSON map of channel id to last processed message id
//   - DedupeRegistry: JSON array of hex digests of exported questions
//   - ExportWriter: append-only UTF-8 export lines plus JSON run metadata
//
// Unparsable checkpoint or registry files fail construction instead of
// starting empty: silently discarding known state would re-export
// already-seen questions.
package file

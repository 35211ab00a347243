// Package domain defines the core business entities for Fragvis.
//
// This package is the innermost layer of the hexagonal architecture.
// It has NO external dependencies and defines the fundamental types:
//
//   - Message: One chat message pulled from a channel's history
//   - QuestionRecord: A classified question on its way to the export file
//   - Detection: A classifier verdict for a piece of text
//   - ChannelOutcome / RunSummary: Per-channel and per-run results
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

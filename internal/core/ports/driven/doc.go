// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - HistorySource: Paginated, oldest-first channel history (Discord REST)
//   - Detector: Question classification (keyword heuristic, optional AI)
//   - CheckpointStore: Per-channel resume cursor persistence
//   - DedupeRegistry: Seen-question digest set persistence
//   - ExportWriter: Append-only export artifact and run metadata
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

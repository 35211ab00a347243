// Package services implements the core traversal logic for Fragvis.
//
// Services depend only on domain types and driven ports, so they can be
// tested in isolation with in-memory fakes:
//
//   - Retry: backoff wrapper for remote calls
//   - Engine: per-channel history traversal with checkpoint/dedupe/export
//   - Coordinator: bounded-parallelism scheduling across channels
package services

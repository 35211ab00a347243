// Package memory provides in-memory implementations of the persistence
// ports. They are used by service tests and by dry runs that must not touch
// durable state. All implementations are safe for concurrent use.
package memory

// Package history provides a SQLite-backed log of filter resolutions.
//
// Every resolution run through the CLI can be recorded: which dataset,
// which specification (by canonical JSON and content hash), how many rows
// went in and came out, and the warnings raised. The log is append-only.
//
// # Ordering
//
// Records are ordered by seq, a logical sequence number, never by wall
// time. Append assigns seq as MAX(seq)+1 within its INSERT statement, so
// two processes appending to one file get distinct values. Write keeps
// a caller-chosen seq. Ties break on id COLLATE BINARY so that reads are
// deterministic.
//
// # Idempotency
//
// Write and Append use ON CONFLICT(id) DO NOTHING; storing a record twice
// is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package history

// Package store persists the shared profile in SQLite.
//
// Three tables:
//   - profile_fields: current value per (section, field)
//   - merges: append-only log of every section merge
//   - submissions: outbox of sections handed to submission
//
// Values are stored as canonical JSON (answer.MarshalCanonical), so equal
// profiles produce identical rows.
//
// Ordering uses the merges.seq column, never timestamps. Every read that
// returns more than one row has an explicit ORDER BY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Repository wraps a Store as a profile.Store: reads come from memory and
// each merge is written through.
package store

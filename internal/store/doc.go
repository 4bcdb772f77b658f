// Package store provides a SQLite registry of compiled models and of the
// variants produced by path-detector sweeps.
//
// # Tables
//
//   - models: one row per distinct model, keyed by its content hash
//   - variants: one row per (batch, zeroed reaction), pointing at a model
//
// # Patterns
//
// Content addressing: a model's key is ir.ModelHash, so compiling the same
// network twice stores it once. Writes use ON CONFLICT DO NOTHING and are
// idempotent.
//
// Logical time: ordering uses a seq INTEGER supplied by the caller's logical
// clock, never wall time. Every query orders by seq and then by key with
// COLLATE BINARY, so listings are identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: variants must reference a stored model
package store

// Package store provides SQLite-backed durable storage for recorded traces.
//
// A trace is stored as three tables:
//   - traces: one row per recorded run, tagged with the chart name and hash
//   - macro_steps: the macro steps of a trace with their time offset
//   - micro_steps: the micro steps of each macro step as canonical JSON
//
// # Ordering
//
// Traces are ordered by seq, a logical counter assigned at write time,
// never by wall time. Every query orders by seq ASC, id ASC COLLATE BINARY
// so results are identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Step payloads are serialized with ir.MarshalCanonical so identical
// traces produce byte-identical rows.
package store

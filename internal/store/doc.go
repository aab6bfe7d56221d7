// Package store provides the SQLite connection the active record layer runs
// its statements against.
//
// The store owns connection setup only. Each statement executes on its own
// (autocommit); there is no pooling or transaction scoping beyond what
// database/sql provides, and the connection pool is capped at one
// connection because SQLite allows a single writer.
//
// # Drivers
//
//   - Default: github.com/mattn/go-sqlite3 (CGO), driver name "sqlite3"
//   - -tags purego: modernc.org/sqlite (pure Go), driver name "sqlite"
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema bootstrap is the caller's job: ApplySchema runs a DDL script.
package store

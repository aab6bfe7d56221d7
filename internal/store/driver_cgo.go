//go:build !purego

// CGO SQLite driver using mattn/go-sqlite3. This is the default.
// Build with -tags purego to switch to modernc.org/sqlite.
package store

import (
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
)

const (
	driverName    = "sqlite3"
	driverPackage = "github.com/mattn/go-sqlite3"
)

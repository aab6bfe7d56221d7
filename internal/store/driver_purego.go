//go:build purego

// Pure Go SQLite driver using modernc.org/sqlite.
// Selected with -tags purego; needs no C toolchain.
package store

import (
	_ "modernc.org/sqlite" // registers "sqlite"
)

const (
	driverName    = "sqlite"
	driverPackage = "modernc.org/sqlite"
)

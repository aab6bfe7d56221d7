// Package sequence hands out surrogate primary keys for tables whose ids are
// assigned by the mapping layer rather than the store.
//
// Each table gets its own counter. The first request for a table seeds the
// counter from the highest id already stored; every later request increments
// the in-memory counter without touching the store again. Ids are never
// reused, even after the row that held one is deleted, and gaps are not
// filled.
//
// The generator assumes it is the only writer assigning ids to its tables.
// Rows inserted by another process or connection are not detected, so a
// concurrent external writer can produce duplicate keys.
package sequence

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/roach88/arec/internal/querysql"
	"github.com/roach88/arec/internal/store"
)

// SeedFunc returns the highest id currently stored in table, or 0 when the
// table is empty.
type SeedFunc func(ctx context.Context, table string) (int64, error)

// Generator is a set of per-table monotonic counters.
//
// Thread-safety: Next is serialized by a single mutex, including the seed
// lookup, so two callers can never observe the same value for a table.
type Generator struct {
	mu   sync.Mutex
	seed SeedFunc
	last map[string]int64
}

// New creates a generator that seeds counters with seed.
func New(seed SeedFunc) *Generator {
	return &Generator{
		seed: seed,
		last: make(map[string]int64),
	}
}

// Next returns the next id for table.
// The first call per table runs the seed lookup; a failed lookup leaves the
// table unseeded so the next call retries it.
func (g *Generator) Next(ctx context.Context, table string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[table]
	if !ok {
		seeded, err := g.seed(ctx, table)
		if err != nil {
			return 0, fmt.Errorf("seed sequence for %s: %w", table, err)
		}
		last = seeded
	}

	last++
	g.last[table] = last
	return last, nil
}

// MaxIDSeeder seeds counters with SELECT MAX(id) against conn.
func MaxIDSeeder(conn store.Conn) SeedFunc {
	return func(ctx context.Context, table string) (int64, error) {
		var highest sql.NullInt64
		if err := conn.QueryRowContext(ctx, querysql.MaxID(table)).Scan(&highest); err != nil {
			return 0, fmt.Errorf("query max id: %w", err)
		}
		// MAX over an empty table is NULL
		if !highest.Valid {
			return 0, nil
		}
		return highest.Int64, nil
	}
}

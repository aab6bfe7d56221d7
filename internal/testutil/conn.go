package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/roach88/arec/internal/store"
)

// RecordingConn wraps a store.Conn and records every statement it sees.
//
// Thread-safety: All methods are safe for concurrent use.
type RecordingConn struct {
	inner store.Conn

	mu         sync.Mutex
	statements []string
}

// NewRecordingConn wraps inner.
func NewRecordingConn(inner store.Conn) *RecordingConn {
	return &RecordingConn{inner: inner}
}

func (c *RecordingConn) record(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements = append(c.statements, query)
}

// ExecContext implements store.Conn.
func (c *RecordingConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	c.record(query)
	return c.inner.ExecContext(ctx, query, args...)
}

// QueryContext implements store.Conn.
func (c *RecordingConn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	c.record(query)
	return c.inner.QueryContext(ctx, query, args...)
}

// QueryRowContext implements store.Conn.
func (c *RecordingConn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	c.record(query)
	return c.inner.QueryRowContext(ctx, query, args...)
}

// Statements returns a copy of the recorded statements in order.
func (c *RecordingConn) Statements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.statements))
	copy(out, c.statements)
	return out
}

// Count returns how many recorded statements start with prefix.
func (c *RecordingConn) Count(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.statements {
		if strings.HasPrefix(s, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets all recorded statements.
func (c *RecordingConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements = nil
}

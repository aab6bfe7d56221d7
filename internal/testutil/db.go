// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/arec/internal/activerecord"
	"github.com/roach88/arec/internal/demo"
	"github.com/roach88/arec/internal/store"
)

// Session is the session id used by OpenDemoDB so log output is stable.
const Session = "test-session-00000000-0000-0000-0000-000000000001"

// OpenStore opens a fresh SQLite database under t.TempDir and applies schema
// when it is non-empty. The store is closed when the test ends.
func OpenStore(t testing.TB, schema string) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	if schema != "" {
		require.NoError(t, s.ApplySchema(context.Background(), schema))
	}
	return s
}

// OpenDemoDB opens a store with the demo tables and wraps it in a DB that
// logs to t. conn may wrap the store (e.g. a RecordingConn); pass nil to use
// the store directly.
func OpenDemoDB(t testing.TB, wrap func(store.Conn) store.Conn, opts ...activerecord.Option) (*store.Store, *activerecord.DB) {
	t.Helper()

	s := OpenStore(t, demo.Schema())
	var conn store.Conn = s
	if wrap != nil {
		conn = wrap(s)
	}

	all := append([]activerecord.Option{
		activerecord.WithLogger(Logger(t)),
		activerecord.WithSession(Session),
	}, opts...)

	db, err := activerecord.New(conn, all...)
	require.NoError(t, err)
	return s, db
}

// Logger returns a debug-level logger writing through t.Log.
func Logger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE person (id INTEGER, name VARCHAR, surname VARCHAR);
CREATE TABLE counter (id INTEGER PRIMARY KEY, label VARCHAR);
`

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.ApplySchema(ctx, testSchema))

	_, err = s.ExecContext(ctx, "INSERT INTO person (id, name, surname) VALUES (?, ?, ?)", 1, "a", "b")
	require.NoError(t, err)

	// the single pooled connection keeps the in-memory database alive
	var count int
	require.NoError(t, s.QueryRowContext(ctx, "SELECT COUNT(*) FROM person").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestClose_MultipleCalls(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	_ = s.Close()
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	db := s.DB()
	require.NotNil(t, db)
	assert.NoError(t, db.Ping())
}

func TestApplySchema_CreatesTables(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ApplySchema(context.Background(), testSchema))

	for _, table := range []string{"person", "counter"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found", table)
	}
}

func TestApplySchema_InvalidSQL(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	err = s.ApplySchema(context.Background(), "CREATE TABLE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute schema")
}

func TestStore_QueryContext(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.ApplySchema(ctx, testSchema))

	res, err := s.ExecContext(ctx, "INSERT INTO counter (label) VALUES (?)", "first")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	rows, err := s.QueryContext(ctx, "SELECT label, id FROM counter")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var label string
	var gotID int64
	require.NoError(t, rows.Scan(&label, &gotID))
	assert.Equal(t, "first", label)
	assert.Equal(t, int64(1), gotID)
	assert.False(t, rows.Next())
	assert.NoError(t, rows.Err())
}

func TestStore_SatisfiesConn(t *testing.T) {
	var _ Conn = (*Store)(nil)
}

func TestDriverName(t *testing.T) {
	assert.Contains(t, []string{"sqlite3", "sqlite"}, DriverName())
	assert.NotEmpty(t, DriverPackage())
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
}

func TestPragma_Synchronous(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	// NORMAL = 1
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
}

func TestPragma_BusyTimeout(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestPragma_ForeignKeys(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	// ON = 1
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

package querysql

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Person(t *testing.T) {
	stmts, err := Build("person", []string{"name", "surname"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT name, surname FROM person WHERE id = ?", stmts.Select)
	assert.Equal(t, "SELECT name, surname, id FROM person", stmts.SelectAll)
	assert.Equal(t, "INSERT INTO person (name, surname) VALUES (?, ?)", stmts.InsertExternal)
	assert.Equal(t, "INSERT INTO person (name, surname, id) VALUES (?, ?, ?)", stmts.InsertInternal)
	assert.Equal(t, "UPDATE person SET name=?, surname=? WHERE id = ?", stmts.Update)
	assert.Equal(t, "DELETE FROM person WHERE id = ?", stmts.Delete)
	assert.Equal(t, "SELECT MAX(id) FROM person", stmts.MaxID)
}

func TestBuild_SingleColumn(t *testing.T) {
	stmts, err := Build("tag", []string{"label"})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO tag (label) VALUES (?)", stmts.InsertExternal)
	assert.Equal(t, "INSERT INTO tag (label, id) VALUES (?, ?)", stmts.InsertInternal)
	assert.Equal(t, "UPDATE tag SET label=? WHERE id = ?", stmts.Update)
}

func TestBuild_PlaceholderCountMatchesColumns(t *testing.T) {
	columns := []string{"a", "b", "c", "d", "e"}
	stmts, err := Build("wide", columns)
	require.NoError(t, err)

	testCases := []struct {
		name string
		sql  string
		want int
	}{
		{"select", stmts.Select, 1},
		{"select all", stmts.SelectAll, 0},
		{"insert external", stmts.InsertExternal, len(columns)},
		{"insert internal", stmts.InsertInternal, len(columns) + 1},
		{"update", stmts.Update, len(columns) + 1},
		{"delete", stmts.Delete, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, strings.Count(tc.sql, "?"), tc.sql)
		})
	}
}

func TestBuild_ColumnOrderPreserved(t *testing.T) {
	stmts, err := Build("mountain", []string{"name", "height"})
	require.NoError(t, err)

	assert.Less(t, strings.Index(stmts.Update, "name=?"), strings.Index(stmts.Update, "height=?"))
	assert.True(t, strings.HasSuffix(stmts.Update, "WHERE id = ?"))
	assert.Contains(t, stmts.InsertInternal, "(name, height, id)")
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build("", []string{"a"})
	assert.Error(t, err)

	_, err = Build("t", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns")

	_, err = Build("t", []string{"a", ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestSelectAllWhere(t *testing.T) {
	stmts, err := Build("mountain", []string{"name", "height"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT name, height, id FROM mountain WHERE name = ?", stmts.SelectAllWhere("name"))
	// the cached template is untouched
	assert.Equal(t, "SELECT name, height, id FROM mountain", stmts.SelectAll)
}

func TestBuild_Golden(t *testing.T) {
	stmts, err := Build("person_with_db_sequence", []string{"name", "surname"})
	require.NoError(t, err)

	rendered := strings.Join([]string{
		stmts.Select,
		stmts.SelectAll,
		stmts.InsertExternal,
		stmts.InsertInternal,
		stmts.Update,
		stmts.Delete,
		stmts.MaxID,
	}, "\n") + "\n"

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "person_with_db_sequence", []byte(rendered))
}

package querysql

import (
	"fmt"
	"strings"
)

// IDColumn is the primary key column every mapped table carries.
const IDColumn = "id"

// Statements holds the parameterized SQL rendered once per entity table.
//
// Placeholders follow the column order passed to Build. The id placeholder is
// always last for statements that take both column values and an id.
type Statements struct {
	// Select loads one row by id: SELECT <cols> FROM <table> WHERE id = ?
	Select string `json:"select"`

	// SelectAll loads every row with the id appended as the last column.
	SelectAll string `json:"select_all"`

	// InsertExternal leaves id to the store (auto-increment column).
	InsertExternal string `json:"insert_external"`

	// InsertInternal writes the columns followed by a caller-supplied id.
	InsertInternal string `json:"insert_internal"`

	// Update writes every column, then filters by id.
	Update string `json:"update"`

	// Delete removes one row by id.
	Delete string `json:"delete"`

	// MaxID reads the highest stored id. Used to seed surrogate keys.
	MaxID string `json:"max_id"`
}

// Build renders the canonical statements for a table.
//
// Neither the table nor the column names are checked against the schema; a
// mismatch surfaces when the statement runs.
func Build(table string, columns []string) (Statements, error) {
	if table == "" {
		return Statements{}, fmt.Errorf("build statements: empty table name")
	}
	if len(columns) == 0 {
		return Statements{}, fmt.Errorf("build statements for %s: no columns", table)
	}
	for i, col := range columns {
		if col == "" {
			return Statements{}, fmt.Errorf("build statements for %s: column %d has empty name", table, i)
		}
	}

	cols := strings.Join(columns, ", ")
	marks := placeholders(len(columns))

	return Statements{
		Select:         fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", cols, table, IDColumn),
		SelectAll:      fmt.Sprintf("SELECT %s, %s FROM %s", cols, IDColumn, table),
		InsertExternal: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, cols, marks),
		InsertInternal: fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s, ?)", table, cols, IDColumn, marks),
		Update:         fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table, assignments(columns), IDColumn),
		Delete:         fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, IDColumn),
		MaxID:          MaxID(table),
	}, nil
}

// SelectAllWhere appends an equality filter on column to SelectAll.
//
// SECURITY: column is concatenated into the SQL text as-is. Callers must only
// pass column names they have checked against the entity's descriptor; the
// filter value itself is always bound as a parameter.
func (s Statements) SelectAllWhere(column string) string {
	return s.SelectAll + " WHERE " + column + " = ?"
}

// MaxID renders the query that reads the highest id in table.
func MaxID(table string) string {
	return fmt.Sprintf("SELECT MAX(%s) FROM %s", IDColumn, table)
}

// placeholders returns n comma separated "?" markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// assignments returns "a=?, b=?" for the given columns.
func assignments(columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + "=?"
	}
	return strings.Join(parts, ", ")
}

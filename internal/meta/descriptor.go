package meta

import (
	"fmt"

	"github.com/roach88/arec/internal/querysql"
)

// Descriptor is the resolved, immutable mapping of one entity type.
// It is safe for concurrent use.
type Descriptor[E any] struct {
	typeName   string
	table      string
	keys       KeyStrategy
	columns    []Binding[E]
	names      []string
	byField    map[string]int
	statements querysql.Statements
}

// Info is a type-erased summary of a descriptor.
type Info struct {
	Type       string              `json:"type"`
	Table      string              `json:"table"`
	Keys       string              `json:"keys"`
	Columns    []ColumnInfo        `json:"columns"`
	Statements querysql.Statements `json:"statements"`
}

// ColumnInfo describes one mapped column.
type ColumnInfo struct {
	Field  string `json:"field"`
	Column string `json:"column"`
	Type   string `json:"type"`
}

// Build validates m and resolves it into a descriptor.
// typeName is used as the table name when the mapping has no alias.
func Build[E any](typeName string, m Mapping[E]) (*Descriptor[E], error) {
	fail := func(format string, args ...any) (*Descriptor[E], error) {
		return nil, &ConfigError{Type: typeName, Message: fmt.Sprintf(format, args...)}
	}

	if m.Table == nil {
		return fail("no table declared")
	}
	if !m.Table.Keys.Valid() {
		return fail("invalid key strategy %s", m.Table.Keys)
	}
	if len(m.Columns) == 0 {
		return fail("no persistent columns")
	}

	table := m.Table.Alias
	if table == "" {
		table = typeName
	}

	d := &Descriptor[E]{
		typeName: typeName,
		table:    table,
		keys:     m.Table.Keys,
		columns:  make([]Binding[E], len(m.Columns)),
		names:    make([]string, len(m.Columns)),
		byField:  make(map[string]int, len(m.Columns)),
	}

	seen := make(map[string]string, len(m.Columns))
	for i, b := range m.Columns {
		if !b.valid() || b.field == "" {
			return fail("column %d is not a field binding", i)
		}
		col := b.Column()
		if col == querysql.IDColumn {
			return fail("field %s maps to the reserved column %q", b.field, querysql.IDColumn)
		}
		if prev, dup := seen[col]; dup {
			return fail("fields %s and %s both map to column %q", prev, b.field, col)
		}
		if _, dup := d.byField[b.field]; dup {
			return fail("field %s is bound twice", b.field)
		}
		seen[col] = b.field
		d.columns[i] = b
		d.names[i] = col
		d.byField[b.field] = i
	}

	stmts, err := querysql.Build(table, d.names)
	if err != nil {
		return nil, &ConfigError{Type: typeName, Message: "build statements", Err: err}
	}
	d.statements = stmts

	return d, nil
}

// TypeName returns the Go type name the descriptor was built for.
func (d *Descriptor[E]) TypeName() string { return d.typeName }

// TableName returns the resolved table name.
func (d *Descriptor[E]) TableName() string { return d.table }

// Keys returns the key strategy.
func (d *Descriptor[E]) Keys() KeyStrategy { return d.keys }

// Columns returns the bindings in column order.
func (d *Descriptor[E]) Columns() []Binding[E] {
	out := make([]Binding[E], len(d.columns))
	copy(out, d.columns)
	return out
}

// ColumnNames returns the column names in column order, without id.
func (d *Descriptor[E]) ColumnNames() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// HasColumn reports whether name is a mapped column or the id column.
func (d *Descriptor[E]) HasColumn(name string) bool {
	if name == querysql.IDColumn {
		return true
	}
	for _, n := range d.names {
		if n == name {
			return true
		}
	}
	return false
}

// Binding returns the binding for a field name.
func (d *Descriptor[E]) Binding(field string) (Binding[E], bool) {
	i, ok := d.byField[field]
	if !ok {
		return Binding[E]{}, false
	}
	return d.columns[i], true
}

// Statements returns the precomputed SQL for the table.
func (d *Descriptor[E]) Statements() querysql.Statements { return d.statements }

// InsertStatement returns the insert matching the key strategy.
func (d *Descriptor[E]) InsertStatement() string {
	if d.keys == KeyInternal {
		return d.statements.InsertInternal
	}
	return d.statements.InsertExternal
}

// Values reads the column values of e in column order.
func (d *Descriptor[E]) Values(e E) []any {
	out := make([]any, len(d.columns))
	for i, b := range d.columns {
		out[i] = b.Get(e)
	}
	return out
}

// Info returns a type-erased summary.
func (d *Descriptor[E]) Info() Info {
	cols := make([]ColumnInfo, len(d.columns))
	for i, b := range d.columns {
		cols[i] = ColumnInfo{Field: b.field, Column: d.names[i], Type: b.typ.String()}
	}
	return Info{
		Type:       d.typeName,
		Table:      d.table,
		Keys:       d.keys.String(),
		Columns:    cols,
		Statements: d.statements,
	}
}

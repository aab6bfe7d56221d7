package meta

import (
	"fmt"
	"reflect"
)

// Table is the table-level half of an entity's mapping.
type Table struct {
	// Alias overrides the table name. Empty means the Go type name.
	Alias string

	// Keys selects how new rows get their id.
	Keys KeyStrategy
}

// Mapping is the declaration an entity type supplies.
//
// A nil Table marks a type that is not an entity: it is skipped by Preload
// and rejected by Lookup.
type Mapping[E any] struct {
	Table   *Table
	Columns []Binding[E]
}

// Mapper is implemented by entity pointer types.
//
// Mapping is called on a freshly allocated zero value and must not depend on
// the receiver's state.
type Mapper[E any] interface {
	Mapping() Mapping[E]
}

// Binding ties one persistent field of E to a column.
//
// Bindings are values; As returns a modified copy.
type Binding[E any] struct {
	field string
	alias string
	typ   reflect.Type
	get   func(E) any
	set   func(E, any) error
}

// Field binds the field returned by ref under the given field name.
// The column name defaults to name.
func Field[E any, V any](name string, ref func(E) *V) Binding[E] {
	return Binding[E]{
		field: name,
		typ:   reflect.TypeFor[V](),
		get: func(e E) any {
			return *ref(e)
		},
		set: func(e E, v any) error {
			if v == nil {
				var zero V
				*ref(e) = zero
				return nil
			}
			val, ok := v.(V)
			if !ok {
				return fmt.Errorf("field %s: cannot assign %T to %s", name, v, reflect.TypeFor[V]())
			}
			*ref(e) = val
			return nil
		},
	}
}

// As returns a copy of b stored under the column alias.
func (b Binding[E]) As(alias string) Binding[E] {
	b.alias = alias
	return b
}

// Field returns the field name.
func (b Binding[E]) Field() string { return b.field }

// Alias returns the explicit column alias, empty when none was set.
func (b Binding[E]) Alias() string { return b.alias }

// Column returns the column name: the alias if set, the field name otherwise.
func (b Binding[E]) Column() string {
	if b.alias != "" {
		return b.alias
	}
	return b.field
}

// Type returns the declared Go type of the field.
func (b Binding[E]) Type() reflect.Type { return b.typ }

// Get reads the field from e.
func (b Binding[E]) Get(e E) any { return b.get(e) }

// Set writes v into the field of e. v must already be assignable to Type.
func (b Binding[E]) Set(e E, v any) error { return b.set(e, v) }

// valid reports whether b was created through Field.
func (b Binding[E]) valid() bool {
	return b.typ != nil && b.get != nil && b.set != nil
}

package harness

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/arec/internal/activerecord"
	"github.com/roach88/arec/internal/convert"
	"github.com/roach88/arec/internal/demo"
)

// binder runs CRUD calls for one entity type behind an untyped surface, so
// scenario steps can name the type as a string.
type binder interface {
	New() any
	Assign(db *activerecord.DB, e any, fields map[string]any) error
	Snapshot(db *activerecord.DB, e any) (map[string]any, error)
	Save(ctx context.Context, db *activerecord.DB, e any) error
	Delete(ctx context.Context, db *activerecord.DB, e any) error
	FindByID(ctx context.Context, db *activerecord.DB, id int64) (any, bool, error)
	FindAll(ctx context.Context, db *activerecord.DB) ([]any, error)
	FindAllByColumn(ctx context.Context, db *activerecord.DB, column string, value any) ([]any, error)
}

// binders maps scenario entity names to demo types.
var binders = map[string]binder{
	"person":                  entityBinder[demo.Person, *demo.Person]{},
	"person_alias":            entityBinder[demo.PersonAlias, *demo.PersonAlias]{},
	"person_with_db_sequence": entityBinder[demo.PersonDatabaseSequence, *demo.PersonDatabaseSequence]{},
	"mountain":                entityBinder[demo.Mountain, *demo.Mountain]{},
}

// EntityNames returns the names scenarios may use, sorted.
func EntityNames() []string {
	names := make([]string, 0, len(binders))
	for name := range binders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type entityBinder[T any, E activerecord.Entity[T, E]] struct{}

func (entityBinder[T, E]) New() any {
	return E(new(T))
}

func (b entityBinder[T, E]) cast(e any) (E, error) {
	typed, ok := e.(E)
	if !ok {
		var want E
		return nil, fmt.Errorf("entity is %T, want %T", e, want)
	}
	return typed, nil
}

// Assign sets fields by field name, converting YAML scalars to the declared
// field type.
func (b entityBinder[T, E]) Assign(db *activerecord.DB, e any, fields map[string]any) error {
	typed, err := b.cast(e)
	if err != nil {
		return err
	}
	d, err := activerecord.Describe[T, E](db)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		binding, ok := d.Binding(name)
		if !ok {
			return fmt.Errorf("%s has no mapped field %q", d.TypeName(), name)
		}
		v, err := convert.To(fields[name], binding.Type())
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if err := binding.Set(typed, v); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the mapped field values keyed by field name, plus "id".
func (b entityBinder[T, E]) Snapshot(db *activerecord.DB, e any) (map[string]any, error) {
	typed, err := b.cast(e)
	if err != nil {
		return nil, err
	}
	d, err := activerecord.Describe[T, E](db)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(d.Columns())+1)
	for _, binding := range d.Columns() {
		out[binding.Field()] = binding.Get(typed)
	}
	if id, ok := typed.ID(); ok {
		out["id"] = id
	}
	return out, nil
}

func (b entityBinder[T, E]) Save(ctx context.Context, db *activerecord.DB, e any) error {
	typed, err := b.cast(e)
	if err != nil {
		return err
	}
	return activerecord.Save[T, E](ctx, db, typed)
}

func (b entityBinder[T, E]) Delete(ctx context.Context, db *activerecord.DB, e any) error {
	typed, err := b.cast(e)
	if err != nil {
		return err
	}
	return activerecord.Delete[T, E](ctx, db, typed)
}

func (entityBinder[T, E]) FindByID(ctx context.Context, db *activerecord.DB, id int64) (any, bool, error) {
	e, found, err := activerecord.FindByID[T, E](ctx, db, id)
	if err != nil || !found {
		return nil, found, err
	}
	return e, true, nil
}

func (entityBinder[T, E]) FindAll(ctx context.Context, db *activerecord.DB) ([]any, error) {
	rows, err := activerecord.FindAll[T, E](ctx, db)
	if err != nil {
		return nil, err
	}
	return erase(rows), nil
}

func (entityBinder[T, E]) FindAllByColumn(ctx context.Context, db *activerecord.DB, column string, value any) ([]any, error) {
	rows, err := activerecord.FindAllByColumn[T, E](ctx, db, column, value)
	if err != nil {
		return nil, err
	}
	return erase(rows), nil
}

func erase[E any](rows []E) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

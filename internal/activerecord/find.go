package activerecord

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/roach88/arec/internal/convert"
	"github.com/roach88/arec/internal/meta"
	"github.com/roach88/arec/internal/querysql"
)

// FindByID loads the entity with the given id.
// A missing row is reported as found=false with a nil error.
func FindByID[T any, E Entity[T, E]](ctx context.Context, db *DB, id int64) (E, bool, error) {
	const op = "find_by_id"
	d, err := describe[T, E](db, op)
	if err != nil {
		return nil, false, err
	}

	stmt := d.Statements().Select
	db.logger.Debug("query", "op", op, "sql", stmt, "id", id)

	rows, err := db.conn.QueryContext(ctx, stmt, id)
	if err != nil {
		return nil, false, storeError[T](op, stmt, err)
	}
	defer rows.Close()

	sc, err := newScanner[T, E](rows, d, op, stmt)
	if err != nil {
		return nil, false, err
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, storeError[T](op, stmt, err)
		}
		return nil, false, nil
	}

	e, err := sc.scan(rows)
	if err != nil {
		return nil, false, err
	}
	// the single-row select does not project id
	e.model().setID(id)

	if err := rows.Err(); err != nil {
		return nil, false, storeError[T](op, stmt, err)
	}
	return e, true, nil
}

// FindAll loads every row of T's table. An empty table yields an empty,
// non-nil slice.
func FindAll[T any, E Entity[T, E]](ctx context.Context, db *DB) ([]E, error) {
	const op = "find_all"
	d, err := describe[T, E](db, op)
	if err != nil {
		return nil, err
	}
	return queryAll[T](ctx, db, d, op, d.Statements().SelectAll)
}

// FindAllByColumn loads every row whose column equals value.
//
// SECURITY: column is spliced into the SQL text. It is checked against the
// entity's mapped columns (and id) first, and anything else is rejected with
// ErrUnknownColumn. value is always passed as a parameter.
func FindAllByColumn[T any, E Entity[T, E]](ctx context.Context, db *DB, column string, value any) ([]E, error) {
	const op = "find_all_by_column"
	d, err := describe[T, E](db, op)
	if err != nil {
		return nil, err
	}
	if !d.HasColumn(column) {
		return nil, &Error{
			Kind:   KindMapping,
			Op:     op,
			Entity: typeName[T](),
			Err:    fmt.Errorf("%w %q on table %s", ErrUnknownColumn, column, d.TableName()),
		}
	}
	return queryAll[T](ctx, db, d, op, d.Statements().SelectAllWhere(column), value)
}

func queryAll[T any, E Entity[T, E]](ctx context.Context, db *DB, d *meta.Descriptor[E], op, stmt string, args ...any) ([]E, error) {
	db.logger.Debug("query", "op", op, "sql", stmt, "args", len(args))

	rows, err := db.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, storeError[T](op, stmt, err)
	}
	defer rows.Close()

	sc, err := newScanner[T, E](rows, d, op, stmt)
	if err != nil {
		return nil, err
	}

	out := []E{}
	for rows.Next() {
		e, err := sc.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError[T](op, stmt, err)
	}

	db.logger.Debug("rows loaded", "op", op, "table", d.TableName(), "count", len(out))
	return out, nil
}

// scanner materializes rows of one result set into entities.
type scanner[T any, E Entity[T, E]] struct {
	d     *meta.Descriptor[E]
	cols  []meta.Binding[E]
	index []int
	id    int
	width int
	op    string
	stmt  string
}

var int64Type = reflect.TypeFor[int64]()

func newScanner[T any, E Entity[T, E]](rows *sql.Rows, d *meta.Descriptor[E], op, stmt string) (*scanner[T, E], error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, storeError[T](op, stmt, err)
	}
	pos := make(map[string]int, len(names))
	for i, n := range names {
		pos[n] = i
	}

	sc := &scanner[T, E]{
		d:     d,
		cols:  d.Columns(),
		index: make([]int, 0, len(names)),
		id:    -1,
		width: len(names),
		op:    op,
		stmt:  stmt,
	}
	for _, b := range sc.cols {
		i, ok := pos[b.Column()]
		if !ok {
			return nil, &Error{
				Kind:      KindMapping,
				Op:        op,
				Entity:    typeName[T](),
				Statement: stmt,
				Err:       fmt.Errorf("field %s: column %q missing from result", b.Field(), b.Column()),
			}
		}
		sc.index = append(sc.index, i)
	}
	if i, ok := pos[querysql.IDColumn]; ok {
		sc.id = i
	}
	return sc, nil
}

// scan reads the current row. A failure leaves no partial entity behind.
func (sc *scanner[T, E]) scan(rows *sql.Rows) (E, error) {
	raw := make([]any, sc.width)
	ptrs := make([]any, sc.width)
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, storeError[T](sc.op, sc.stmt, err)
	}

	e := E(new(T))
	for i, b := range sc.cols {
		v, err := convert.To(raw[sc.index[i]], b.Type())
		if err != nil {
			kind := KindMapping
			if convert.IsError(err) {
				kind = KindConversion
			}
			return nil, sc.fail(kind, fmt.Errorf("field %s: %w", b.Field(), err))
		}
		if err := b.Set(e, v); err != nil {
			return nil, sc.fail(KindMapping, err)
		}
	}

	if sc.id >= 0 {
		v, err := convert.To(raw[sc.id], int64Type)
		if err != nil {
			return nil, sc.fail(KindConversion, fmt.Errorf("id: %w", err))
		}
		e.model().setID(v.(int64))
	}
	return e, nil
}

func (sc *scanner[T, E]) fail(kind ErrorKind, err error) error {
	return &Error{Kind: kind, Op: sc.op, Entity: typeName[T](), Statement: sc.stmt, Err: err}
}

func storeError[T any](op, stmt string, err error) error {
	return &Error{Kind: KindStore, Op: op, Entity: typeName[T](), Statement: stmt, Err: err}
}

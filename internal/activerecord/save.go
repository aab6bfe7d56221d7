package activerecord

import (
	"context"
	"fmt"

	"github.com/roach88/arec/internal/meta"
)

// Save inserts e when it has no id and updates it otherwise.
//
// On insert the id is set on e: before the statement runs for KeyInternal
// (and cleared again if the insert fails), after it for KeyExternal.
// An update that matches no row is not an error.
func Save[T any, E Entity[T, E]](ctx context.Context, db *DB, e E) error {
	const op = "save"
	if e == nil {
		return &Error{Kind: KindMapping, Op: op, Entity: typeName[T](), Err: ErrNilEntity}
	}
	d, err := describe[T, E](db, op)
	if err != nil {
		return err
	}

	m := e.model()
	if id, ok := m.ID(); ok {
		return update[T](ctx, db, d, e, id)
	}
	if d.Keys() == meta.KeyInternal {
		return insertInternal[T](ctx, db, d, e)
	}
	return insertExternal[T](ctx, db, d, e)
}

func insertInternal[T any, E Entity[T, E]](ctx context.Context, db *DB, d *meta.Descriptor[E], e E) error {
	const op = "insert"
	stmt := d.Statements().InsertInternal

	id, err := db.keys.Next(ctx, d.TableName())
	if err != nil {
		return storeError[T](op, d.Statements().MaxID, err)
	}

	m := e.model()
	m.setID(id)
	args := append(d.Values(e), id)

	db.logger.Debug("exec", "op", op, "sql", stmt, "id", id)
	res, err := db.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		m.clearID()
		return storeError[T](op, stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		m.clearID()
		return storeError[T](op, stmt, err)
	}
	if n == 0 {
		m.clearID()
		return storeError[T](op, stmt, ErrNoRowsAffected)
	}
	return nil
}

func insertExternal[T any, E Entity[T, E]](ctx context.Context, db *DB, d *meta.Descriptor[E], e E) error {
	const op = "insert"
	stmt := d.Statements().InsertExternal

	db.logger.Debug("exec", "op", op, "sql", stmt)
	res, err := db.conn.ExecContext(ctx, stmt, d.Values(e)...)
	if err != nil {
		return storeError[T](op, stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeError[T](op, stmt, err)
	}
	if n == 0 {
		return storeError[T](op, stmt, ErrNoRowsAffected)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storeError[T](op, stmt, fmt.Errorf("%w: %v", ErrNoGeneratedKey, err))
	}

	e.model().setID(id)
	db.logger.Debug("generated key", "table", d.TableName(), "id", id)
	return nil
}

func update[T any, E Entity[T, E]](ctx context.Context, db *DB, d *meta.Descriptor[E], e E, id int64) error {
	const op = "update"
	stmt := d.Statements().Update
	args := append(d.Values(e), id)

	db.logger.Debug("exec", "op", op, "sql", stmt, "id", id)
	res, err := db.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return storeError[T](op, stmt, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		db.logger.Debug("rows updated", "table", d.TableName(), "id", id, "count", n)
	}
	return nil
}

// Delete removes e's row and clears its id, so a later Save inserts it again.
// Deleting a row that is already gone is not an error.
func Delete[T any, E Entity[T, E]](ctx context.Context, db *DB, e E) error {
	const op = "delete"
	if e == nil {
		return &Error{Kind: KindMapping, Op: op, Entity: typeName[T](), Err: ErrNilEntity}
	}
	d, err := describe[T, E](db, op)
	if err != nil {
		return err
	}

	m := e.model()
	id, ok := m.ID()
	if !ok {
		return &Error{Kind: KindMapping, Op: op, Entity: typeName[T](), Err: ErrNotPersisted}
	}

	stmt := d.Statements().Delete
	db.logger.Debug("exec", "op", op, "sql", stmt, "id", id)
	res, err := db.conn.ExecContext(ctx, stmt, id)
	if err != nil {
		return storeError[T](op, stmt, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		db.logger.Debug("rows deleted", "table", d.TableName(), "id", id, "count", n)
	}

	m.clearID()
	return nil
}

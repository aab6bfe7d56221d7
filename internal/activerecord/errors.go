package activerecord

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes failures.
type ErrorKind string

const (
	// KindConfiguration indicates an entity type whose mapping is unusable.
	KindConfiguration ErrorKind = "CONFIGURATION"

	// KindStore indicates the connection failed to prepare, execute or fetch,
	// or a write did not take effect.
	KindStore ErrorKind = "STORE"

	// KindConversion indicates a stored value that does not fit its field.
	KindConversion ErrorKind = "CONVERSION"

	// KindMapping indicates a field or column that cannot be located or set.
	KindMapping ErrorKind = "MAPPING"
)

var (
	// ErrNotPersisted is returned when deleting an entity without an id.
	ErrNotPersisted = errors.New("entity has no id")

	// ErrNilEntity is returned when a nil entity pointer is passed in.
	ErrNilEntity = errors.New("nil entity")

	// ErrNoRowsAffected is returned when an insert reports zero rows.
	ErrNoRowsAffected = errors.New("no rows affected")

	// ErrNoGeneratedKey is returned when the store does not report a key for
	// an externally keyed insert.
	ErrNoGeneratedKey = errors.New("no generated key")

	// ErrUnknownColumn is returned when a filter names a column the entity
	// does not map.
	ErrUnknownColumn = errors.New("unknown column")
)

// Error is the single error type returned by the CRUD operations.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Op is the operation that failed (find_by_id, find_all, save, ...).
	Op string

	// Entity is the Go type name of the entity.
	Entity string

	// Statement is the SQL being executed, if any.
	Statement string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Statement != "" {
		return fmt.Sprintf("%s: %s %s: %v (sql=%q)", e.Kind, e.Op, e.Entity, e.Err, e.Statement)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func kindOf(err error) (ErrorKind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

// IsConfiguration returns true if err is a configuration error.
func IsConfiguration(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConfiguration
}

// IsStore returns true if err is a store error.
func IsStore(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindStore
}

// IsConversion returns true if err is a conversion error.
func IsConversion(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConversion
}

// IsMapping returns true if err is a mapping error.
func IsMapping(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindMapping
}

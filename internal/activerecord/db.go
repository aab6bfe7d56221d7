package activerecord

import (
	"errors"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/roach88/arec/internal/meta"
	"github.com/roach88/arec/internal/sequence"
	"github.com/roach88/arec/internal/store"
)

// DB is the context every operation runs against. It owns the descriptor
// registry and the surrogate key counters for one connection.
//
// A DB is safe for concurrent use to the extent its connection is.
type DB struct {
	conn     store.Conn
	registry *meta.Registry
	keys     *sequence.Generator
	logger   *slog.Logger
	session  string
}

// Option configures a DB.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	kinds   []meta.Kind
	session string
}

// WithLogger sets the logger. Statements are logged at Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEntities builds descriptors for the given kinds when the DB is created
// instead of on first use. A kind with an unusable mapping fails New.
func WithEntities(kinds ...meta.Kind) Option {
	return func(o *options) {
		o.kinds = append(o.kinds, kinds...)
	}
}

// WithSession sets the session id attached to every log record.
// A UUIDv7 is generated when none is given.
func WithSession(id string) Option {
	return func(o *options) {
		o.session = id
	}
}

// New creates a DB over conn.
func New(conn store.Conn, opts ...Option) (*DB, error) {
	if conn == nil {
		return nil, &Error{Kind: KindConfiguration, Op: "open", Err: errors.New("nil connection")}
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.session == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, &Error{Kind: KindConfiguration, Op: "open", Err: err}
		}
		o.session = id.String()
	}
	logger := o.logger.With("session", o.session)

	db := &DB{
		conn:     conn,
		registry: meta.NewRegistry(logger),
		keys:     sequence.New(sequence.MaxIDSeeder(conn)),
		logger:   logger,
		session:  o.session,
	}

	if len(o.kinds) > 0 {
		if _, err := db.registry.Preload(o.kinds...); err != nil {
			return nil, &Error{Kind: KindConfiguration, Op: "open", Err: err}
		}
	}

	return db, nil
}

// Session returns the session id.
func (db *DB) Session() string { return db.session }

// Logger returns the session logger.
func (db *DB) Logger() *slog.Logger { return db.logger }

// Registry returns the descriptor registry.
func (db *DB) Registry() *meta.Registry { return db.registry }

// Describe returns the descriptor for T, building it if needed.
func Describe[T any, E Entity[T, E]](db *DB) (*meta.Descriptor[E], error) {
	return describe[T, E](db, "describe")
}

func describe[T any, E Entity[T, E]](db *DB, op string) (*meta.Descriptor[E], error) {
	d, err := meta.Lookup[T, E](db.registry)
	if err != nil {
		return nil, &Error{Kind: KindConfiguration, Op: op, Entity: typeName[T](), Err: err}
	}
	return d, nil
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().Name()
}

package meta

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
)

// Registry caches one descriptor per entity type.
//
// Thread-safety: lookups for different types proceed in parallel; concurrent
// first lookups for the same type build the descriptor exactly once and all
// observe the same result, including a build error.
type Registry struct {
	mu      sync.Mutex
	entries map[reflect.Type]*entry
	logger  *slog.Logger
}

type entry struct {
	once sync.Once
	desc any
	err  error
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		entries: make(map[reflect.Type]*entry),
		logger:  logger,
	}
}

// Len returns the number of types looked up so far, failed builds included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) entryFor(t reflect.Type) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[t]
	if !ok {
		e = &entry{}
		r.entries[t] = e
	}
	return e
}

// Lookup returns the descriptor for T, building it on first use.
func Lookup[T any, E interface {
	*T
	Mapper[E]
}](r *Registry) (*Descriptor[E], error) {
	t := reflect.TypeFor[T]()
	e := r.entryFor(t)
	e.once.Do(func() {
		d, err := Build(t.Name(), E(new(T)).Mapping())
		if err != nil {
			e.err = err
			r.logger.Debug("entity rejected", "type", t.Name(), "error", err)
			return
		}
		e.desc = d
		r.logger.Debug("descriptor built",
			"type", t.Name(),
			"table", d.TableName(),
			"keys", d.Keys().String(),
			"columns", len(d.names))
	})
	if e.err != nil {
		return nil, e.err
	}
	return e.desc.(*Descriptor[E]), nil
}

// Kind is a type-erased handle on an entity type, used where a list of
// types is needed (eager loading, describe output).
type Kind interface {
	// Type returns the Go type of the entity struct.
	Type() reflect.Type

	// Declared reports whether the type declares a table at all.
	Declared() bool

	// Describe looks the type up in r and summarizes it.
	Describe(r *Registry) (Info, error)
}

type kind[T any, E interface {
	*T
	Mapper[E]
}] struct{}

// Entity returns the Kind for T.
func Entity[T any, E interface {
	*T
	Mapper[E]
}]() Kind {
	return kind[T, E]{}
}

func (kind[T, E]) Type() reflect.Type { return reflect.TypeFor[T]() }

func (kind[T, E]) Declared() bool {
	return E(new(T)).Mapping().Table != nil
}

func (kind[T, E]) Describe(r *Registry) (Info, error) {
	d, err := Lookup[T, E](r)
	if err != nil {
		return Info{}, err
	}
	return d.Info(), nil
}

// Preload builds descriptors for every declared kind up front and returns how
// many were loaded. Kinds without a table are skipped. All failures are
// reported together.
func (r *Registry) Preload(kinds ...Kind) (int, error) {
	var errs []error
	loaded := 0
	for _, k := range kinds {
		if !k.Declared() {
			r.logger.Debug("skipping undeclared type", "type", k.Type().Name())
			continue
		}
		if _, err := k.Describe(r); err != nil {
			errs = append(errs, err)
			continue
		}
		loaded++
	}
	if len(errs) > 0 {
		return loaded, fmt.Errorf("preload entities: %w", errors.Join(errs...))
	}
	r.logger.Info("entities loaded", "count", loaded)
	return loaded, nil
}

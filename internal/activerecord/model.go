package activerecord

import (
	"github.com/roach88/arec/internal/meta"
)

// Model carries the primary key of an entity. Embed it by value.
//
// The zero Model is a transient entity: it has no id and Save will insert it.
type Model struct {
	id *int64
}

// ID returns the primary key and whether the entity has one.
func (m *Model) ID() (int64, bool) {
	if m.id == nil {
		return 0, false
	}
	return *m.id, true
}

// Persisted reports whether the entity has an id.
func (m *Model) Persisted() bool {
	return m.id != nil
}

func (m *Model) setID(id int64) {
	m.id = &id
}

func (m *Model) clearID() {
	m.id = nil
}

func (m *Model) model() *Model {
	return m
}

// Entity is the constraint satisfied by *T when T embeds Model and *T
// declares a mapping.
type Entity[T any, E any] interface {
	*T
	meta.Mapper[E]
	ID() (int64, bool)
	model() *Model
}

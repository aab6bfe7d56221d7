// Package demo contains a small set of entity types and the schema they map
// to. The CLI, the scenario harness and the tests all use them.
package demo

import (
	"context"
	"fmt"

	"github.com/roach88/arec/internal/activerecord"
	"github.com/roach88/arec/internal/meta"
)

// Kinds returns every demo entity type, for eager loading and describe.
func Kinds() []meta.Kind {
	return []meta.Kind{
		meta.Entity[Person](),
		meta.Entity[PersonAlias](),
		meta.Entity[PersonDatabaseSequence](),
		meta.Entity[Mountain](),
	}
}

// Person maps to the person table with in-process keys.
type Person struct {
	activerecord.Model
	Name    string
	Surname string

	// Unattached is not persisted.
	Unattached string
}

func (*Person) Mapping() meta.Mapping[*Person] {
	return meta.Mapping[*Person]{
		Table: &meta.Table{Alias: "person", Keys: meta.KeyInternal},
		Columns: []meta.Binding[*Person]{
			meta.Field("name", func(p *Person) *string { return &p.Name }),
			meta.Field("surname", func(p *Person) *string { return &p.Surname }),
		},
	}
}

func (p *Person) Save(ctx context.Context, db *activerecord.DB) error {
	return activerecord.Save(ctx, db, p)
}

func (p *Person) Delete(ctx context.Context, db *activerecord.DB) error {
	return activerecord.Delete(ctx, db, p)
}

func (p *Person) String() string {
	return fmt.Sprintf("Person[id=%s, name=%s, surname=%s]", idString(&p.Model), p.Name, p.Surname)
}

// PersonAlias maps differently named fields onto the person table.
// It shares the person key sequence with Person.
type PersonAlias struct {
	activerecord.Model
	NameValue    string
	SurnameValue string
	Unattached   string
}

func (*PersonAlias) Mapping() meta.Mapping[*PersonAlias] {
	return meta.Mapping[*PersonAlias]{
		Table: &meta.Table{Alias: "person", Keys: meta.KeyInternal},
		Columns: []meta.Binding[*PersonAlias]{
			meta.Field("nameValue", func(p *PersonAlias) *string { return &p.NameValue }).As("name"),
			meta.Field("surnameValue", func(p *PersonAlias) *string { return &p.SurnameValue }).As("surname"),
		},
	}
}

func (p *PersonAlias) Save(ctx context.Context, db *activerecord.DB) error {
	return activerecord.Save(ctx, db, p)
}

func (p *PersonAlias) Delete(ctx context.Context, db *activerecord.DB) error {
	return activerecord.Delete(ctx, db, p)
}

func (p *PersonAlias) String() string {
	return fmt.Sprintf("PersonAlias[id=%s, nameValue=%s, surnameValue=%s]", idString(&p.Model), p.NameValue, p.SurnameValue)
}

// PersonDatabaseSequence lets SQLite assign ids through an INTEGER PRIMARY KEY.
type PersonDatabaseSequence struct {
	activerecord.Model
	Name    string
	Surname string
}

func (*PersonDatabaseSequence) Mapping() meta.Mapping[*PersonDatabaseSequence] {
	return meta.Mapping[*PersonDatabaseSequence]{
		Table: &meta.Table{Alias: "person_with_db_sequence", Keys: meta.KeyExternal},
		Columns: []meta.Binding[*PersonDatabaseSequence]{
			meta.Field("name", func(p *PersonDatabaseSequence) *string { return &p.Name }),
			meta.Field("surname", func(p *PersonDatabaseSequence) *string { return &p.Surname }),
		},
	}
}

func (p *PersonDatabaseSequence) Save(ctx context.Context, db *activerecord.DB) error {
	return activerecord.Save(ctx, db, p)
}

func (p *PersonDatabaseSequence) Delete(ctx context.Context, db *activerecord.DB) error {
	return activerecord.Delete(ctx, db, p)
}

func (p *PersonDatabaseSequence) String() string {
	return fmt.Sprintf("PersonDatabaseSequence[id=%s, name=%s, surname=%s]", idString(&p.Model), p.Name, p.Surname)
}

// Mountain has a numeric column.
type Mountain struct {
	activerecord.Model
	Name       string
	Height     int64
	Unattached string
}

func (*Mountain) Mapping() meta.Mapping[*Mountain] {
	return meta.Mapping[*Mountain]{
		Table: &meta.Table{Alias: "mountain", Keys: meta.KeyInternal},
		Columns: []meta.Binding[*Mountain]{
			meta.Field("name", func(m *Mountain) *string { return &m.Name }),
			meta.Field("height", func(m *Mountain) *int64 { return &m.Height }),
		},
	}
}

func (m *Mountain) Save(ctx context.Context, db *activerecord.DB) error {
	return activerecord.Save(ctx, db, m)
}

func (m *Mountain) Delete(ctx context.Context, db *activerecord.DB) error {
	return activerecord.Delete(ctx, db, m)
}

func (m *Mountain) String() string {
	return fmt.Sprintf("Mountain[id=%s, name=%s, height=%d]", idString(&m.Model), m.Name, m.Height)
}

func idString(m *activerecord.Model) string {
	if id, ok := m.ID(); ok {
		return fmt.Sprint(id)
	}
	return "<nil>"
}

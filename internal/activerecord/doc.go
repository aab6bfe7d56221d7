// Package activerecord maps Go structs onto SQL tables with the active record
// pattern: an entity knows its own id, and the package-level functions
// persist, load and remove it.
//
// An entity embeds Model and declares its mapping (see package meta):
//
//	type Person struct {
//		activerecord.Model
//		Name    string
//		Surname string
//	}
//
//	func (*Person) Mapping() meta.Mapping[*Person] { ... }
//
// All operations go through a DB, which owns the connection, the descriptor
// registry and the surrogate key counters:
//
//	db, err := activerecord.New(conn)
//	p := &Person{Name: "Ada"}
//	err = activerecord.Save(ctx, db, p)           // insert, p.ID() is now set
//	got, found, err := activerecord.FindByID[Person](ctx, db, id)
//
// Save inserts when the entity has no id and updates otherwise. Inserts
// follow the table's key strategy: KeyInternal draws the id from an
// in-process counter seeded from MAX(id); KeyExternal lets the store assign
// it and reads it back.
//
// Every failure is returned as *Error, whose Kind separates configuration,
// store, conversion and mapping problems.
//
// Each call issues a single autocommitted statement. There is no
// transaction scoping, identity map or change tracking.
package activerecord

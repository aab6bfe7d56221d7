// Package meta holds the mapping metadata for active record entity types.
//
// An entity type declares its mapping once, as plain data:
//
//	func (*Person) Mapping() meta.Mapping[*Person] {
//		return meta.Mapping[*Person]{
//			Table: &meta.Table{Alias: "person", Keys: meta.KeyInternal},
//			Columns: []meta.Binding[*Person]{
//				meta.Field("name", func(p *Person) *string { return &p.Name }),
//				meta.Field("surname", func(p *Person) *string { return &p.Surname }).As("last_name"),
//			},
//		}
//	}
//
// The Registry turns a Mapping into an immutable Descriptor the first time
// the type is used (or up front, via Preload) and caches it for the life of
// the registry. A Descriptor carries the resolved table name, key strategy,
// ordered column bindings and the precomputed SQL statements.
//
// Column order is fixed when the descriptor is built. Every statement and
// every positional parameter list uses that same order.
//
// Field access goes through the accessor each Binding was created with; the
// package never inspects struct fields or tags.
package meta

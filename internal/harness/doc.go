// Package harness runs scripted CRUD scenarios against the demo entities
// and checks the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: person_roundtrip
//	description: "Save a person and read it back"
//	setup:
//	  - "INSERT INTO person (id, name, surname) VALUES (41, 'Seed', 'Row')"
//	steps:
//	  - op: save
//	    entity: person
//	    ref: ada
//	    fields: { name: Ada, surname: Lovelace }
//	    expect: { id: 42 }
//	  - op: find_all_by_column
//	    entity: person
//	    column: name
//	    value: Ada
//	    expect: { count: 1 }
//	  - op: delete
//	    entity: person
//	    ref: ada
//	assertions:
//	  - type: row_count
//	    table: person
//	    count: 1
//
// Steps call the active record API for the named entity type (person,
// person_alias, person_with_db_sequence, mountain). Fields are addressed by
// field name, so person_alias uses nameValue and surnameValue. A ref names an
// instance across steps: the first save of a ref inserts it, later saves
// update it, and delete removes it.
//
// A step without expect must succeed. expect.error names the error kind a
// step must fail with (CONFIGURATION, STORE, CONVERSION, MAPPING).
//
// # Assertion Types
//
//   - final_state: exactly one row of table matches where; expect columns are compared
//   - row_count: number of rows of table matching where
//   - trace_count: number of steps with the given op
//
// # Deterministic Runs
//
// Every scenario gets its own in-memory database with the demo schema and a
// fixed session id, so ids and traces are identical across runs. The trace
// is serialized as canonical JSON and compared against golden files with
// goldie.
package harness

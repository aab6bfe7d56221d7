package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/person_roundtrip.yaml")
	require.NoError(t, err)

	render := func() []byte {
		result, err := Run(context.Background(), scenario, nil)
		require.NoError(t, err)
		snap := TraceSnapshot{ScenarioName: scenario.Name, Pass: result.Pass, Trace: result.Trace}
		out, err := snap.Canonical()
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, render(), render())
}

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src), "inline")
	require.NoError(t, err)
	return s
}

func TestRun_FailedExpectations(t *testing.T) {
	s := mustParse(t, `
name: wrong_expectations
steps:
  - op: save
    entity: mountain
    ref: m
    fields: { name: Dom, height: 4545 }
    expect: { id: 7 }
  - op: find_all
    entity: mountain
    expect: { count: 3 }
  - op: find_by_id
    entity: mountain
    id: 1
    expect:
      found: true
      fields: { height: 1, missing: x }
  - op: find_all_by_column
    entity: mountain
    column: nope
    value: 1
`)

	result, err := Run(context.Background(), s, nil)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Trace, 4)

	joined := strings.Join(result.Errors, "\n")
	assert.Contains(t, joined, "step 1 (save mountain): expected id 7")
	assert.Contains(t, joined, "step 2 (find_all mountain): expected 3 records, got 1")
	assert.Contains(t, joined, "field height = 4545, want 1")
	assert.Contains(t, joined, `record has no field "missing"`)
	assert.Contains(t, joined, "step 4 (find_all_by_column mountain): unexpected error")
	assert.Equal(t, "MAPPING", result.Trace[3].Error)
}

func TestRun_ExpectedErrorNotRaised(t *testing.T) {
	s := mustParse(t, `
name: no_error
steps:
  - op: find_all
    entity: person
    expect: { error: STORE }
`)
	result, err := Run(context.Background(), s, nil)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], `expected STORE error, got ""`)
}

func TestRun_AssertionFailures(t *testing.T) {
	s := mustParse(t, `
name: assertion_failures
steps:
  - op: save
    entity: person
    fields: { name: A, surname: B }
assertions:
  - type: row_count
    table: person
    count: 5
  - type: final_state
    table: person
    where: { name: A }
    expect: { surname: Z }
  - type: final_state
    table: person
    where: { name: nobody }
    expect: { surname: Z }
  - type: trace_count
    op: delete
    count: 1
`)
	result, err := Run(context.Background(), s, nil)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "5 rows in person")
	assert.Contains(t, result.Errors[1], `column "surname" = Z`)
	assert.Contains(t, result.Errors[2], "row not found")
	assert.Contains(t, result.Errors[3], "delete to appear 1 times")
}

func TestRun_FatalErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown ref",
			src: `
name: unknown_ref
steps:
  - op: delete
    entity: person
    ref: ghost
`,
			want: `unknown ref "ghost"`,
		},
		{
			name: "ref of another type",
			src: `
name: ref_type
steps:
  - op: save
    entity: person
    ref: p
    fields: { name: A }
  - op: delete
    entity: mountain
    ref: p
`,
			want: "is a person, not a mountain",
		},
		{
			name: "unmapped field",
			src: `
name: unmapped
steps:
  - op: save
    entity: person
    fields: { Unattached: x }
`,
			want: `no mapped field "Unattached"`,
		},
		{
			name: "unconvertible field",
			src: `
name: unconvertible
steps:
  - op: save
    entity: mountain
    fields: { height: high }
`,
			want: "field height",
		},
		{
			name: "bad setup",
			src: `
name: bad_setup
setup:
  - "INSERT INTO nowhere VALUES (1)"
steps:
  - op: find_all
    entity: person
`,
			want: "setup[0]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Run(context.Background(), mustParse(t, tc.src), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseScenario_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"missing name", "steps:\n  - {op: find_all, entity: person}\n", "name is required"},
		{"no steps", "name: x\n", "steps list is required"},
		{"unknown field", "name: x\nflow: []\nsteps:\n  - {op: find_all, entity: person}\n", "flow"},
		{"unknown op", "name: x\nsteps:\n  - {op: upsert, entity: person}\n", `unknown op "upsert"`},
		{"missing op", "name: x\nsteps:\n  - {entity: person}\n", "op is required"},
		{"unknown entity", "name: x\nsteps:\n  - {op: find_all, entity: robot}\n", `unknown entity "robot"`},
		{"find_by_id without id", "name: x\nsteps:\n  - {op: find_by_id, entity: person}\n", "id is required"},
		{"column missing", "name: x\nsteps:\n  - {op: find_all_by_column, entity: person}\n", "column is required"},
		{"delete without ref", "name: x\nsteps:\n  - {op: delete, entity: person}\n", "ref is required"},
		{"empty save", "name: x\nsteps:\n  - {op: save, entity: person}\n", "save needs fields"},
		{"bad assertion", "name: x\nsteps:\n  - {op: find_all, entity: person}\nassertions:\n  - {type: nope}\n", "unknown assertion type"},
		{"final_state without expect", "name: x\nsteps:\n  - {op: find_all, entity: person}\nassertions:\n  - {type: final_state, table: person}\n", "expect is required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.src), "inline")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}

func TestEntityNames(t *testing.T) {
	assert.Equal(t, []string{"mountain", "person", "person_alias", "person_with_db_sequence"}, EntityNames())
}

func TestBuildWhereClause_RejectsBadIdentifiers(t *testing.T) {
	_, _, err := buildWhereClause(map[string]any{"name; DROP TABLE person": 1})
	assert.Error(t, err)

	sql, args, err := buildWhereClause(map[string]any{"surname": "b", "name": "a"})
	require.NoError(t, err)
	assert.Equal(t, "name = ? AND surname = ?", sql)
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestValuesEqual(t *testing.T) {
	testCases := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"int vs int64", 3967, int64(3967), true},
		{"int64 vs int64", int64(1), int64(1), true},
		{"string vs bytes", "Ada", []byte("Ada"), true},
		{"string mismatch", "Ada", "Grace", false},
		{"bool vs int", true, int64(1), true},
		{"nil vs nil", nil, nil, true},
		{"nil vs value", nil, "x", false},
		{"int vs string", 1, "1", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, valuesEqual(tc.expected, tc.actual))
		})
	}
}

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arec/internal/demo"
)

func TestSchemaCommand_Print(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Equal(t, demo.Schema(), out)
}

func TestSchemaCommand_Apply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.db")

	out, err := execute(t, "--db", path, "--format", "json", "schema", "--apply")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   SchemaResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Applied)
	assert.Equal(t, path, resp.Data.Database)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDemoCommand_Text(t *testing.T) {
	out, err := execute(t, "--db", ":memory:", "demo")
	require.NoError(t, err)

	assert.Contains(t, out, "Saved person with id 1")
	assert.Contains(t, out, "Person[id=1, name=First name, surname=Last name]")
	assert.Contains(t, out, "By name:")
}

func TestDemoCommand_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.db")

	for run := 0; run < 2; run++ {
		out, err := execute(t, "--db", path, "--format", "json", "demo", "--eager")
		require.NoError(t, err)

		var resp struct {
			Status string     `json:"status"`
			Data   DemoResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.NotEmpty(t, resp.Data.Session)
		require.NotNil(t, resp.Data.Report)
		// tables are recreated, so every run starts at id 1
		assert.Equal(t, int64(1), resp.Data.Report.SavedID)
		assert.Len(t, resp.Data.Report.All, 1)
	}
}

func TestDemoCommand_BadDatabase(t *testing.T) {
	_, err := execute(t, "--db", filepath.Join(t.TempDir(), "missing", "dir", "x.db"), "demo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDescribeCommand_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "describe")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   DescribeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Entities, len(demo.Kinds()))

	tables := map[string]string{}
	for _, info := range resp.Data.Entities {
		tables[info.Type] = info.Table
	}
	assert.Equal(t, "person", tables["Person"])
	assert.Equal(t, "person", tables["PersonAlias"])
	assert.Equal(t, "person_with_db_sequence", tables["PersonDatabaseSequence"])
	assert.Equal(t, "mountain", tables["Mountain"])
}

func TestDescribeCommand_Text(t *testing.T) {
	out, err := execute(t, "describe")
	require.NoError(t, err)

	assert.Contains(t, out, "Person -> person (internal keys)")
	assert.Contains(t, out, "insert:  INSERT INTO person (name, surname, id) VALUES (?, ?, ?)")
	assert.Contains(t, out, "insert:  INSERT INTO person_with_db_sequence (name, surname) VALUES (?, ?)")
}

const passingScenario = `name: mountain_save
steps:
  - op: save
    entity: mountain
    ref: m
    fields:
      name: Eiger
      height: 3967
    expect:
      id: 1
assertions:
  - type: row_count
    table: mountain
    count: 1
`

const failingScenario = `name: wrong_id
steps:
  - op: save
    entity: person
    fields:
      name: A
      surname: B
    expect:
      id: 5
`

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestScenarioCommand_MissingArgs(t *testing.T) {
	_, err := execute(t, "scenario")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestScenarioCommand_NonExistentDir(t *testing.T) {
	_, err := execute(t, "scenario", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "--format", "json", "scenario", "/nonexistent/scenarios")
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestScenarioCommand_Empty(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "scenario", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")

	out, err = execute(t, "--format", "json", "scenario", dir)
	require.NoError(t, err)
	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestScenarioCommand_PassAndFail(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "mountain.yaml", passingScenario)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	out, err := execute(t, "scenario", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ mountain_save")
	assert.Contains(t, out, "✗ wrong_id")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")

	out, err = execute(t, "scenario", dir, "--filter", "mount*")
	require.NoError(t, err)
	assert.Contains(t, out, "All scenarios passed")
}

func TestScenarioCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yml", "name: broken\nsteps: []\n")

	out, err := execute(t, "--format", "json", "scenario", dir)
	require.Error(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   SuiteResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeScenario, resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "broken.yml", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "load error")
}

func TestScenarioCommand_Golden(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "mountain.yaml", passingScenario)

	out, err := execute(t, "scenario", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	goldenPath := filepath.Join(dir, "golden", "mountain.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"mountain_save"`)

	_, err = execute(t, "scenario", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"stale"}`), 0644))
	out, err = execute(t, "scenario", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "person.golden"),
		goldenFilePath(filepath.Join("scenarios", "person.yaml")))
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", passingScenario)
	writeScenario(t, dir, "b.yml", passingScenario)
	writeScenario(t, dir, "notes.txt", "ignored")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = findScenarioFiles(dir, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yml")}, files)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}

func TestScenarioCommand_HarnessSuite(t *testing.T) {
	out, err := execute(t, "scenario", filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ person_roundtrip")
	assert.Contains(t, out, "3 passed, 0 failed, 3 total")
}

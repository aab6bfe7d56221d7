package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step operations.
const (
	OpSave            = "save"
	OpFindByID        = "find_by_id"
	OpFindAll         = "find_all"
	OpFindAllByColumn = "find_all_by_column"
	OpDelete          = "delete"
)

// Scenario is a scripted sequence of CRUD calls against the demo schema.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup holds raw SQL run after the demo schema is created.
	Setup []string `yaml:"setup,omitempty"`

	// Steps run in order through the active record API.
	Steps []Step `yaml:"steps"`

	// Assertions check the final table contents and the trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one CRUD call.
type Step struct {
	// Op is one of save, find_by_id, find_all, find_all_by_column, delete.
	Op string `yaml:"op"`

	// Entity names the entity type: person, person_alias,
	// person_with_db_sequence or mountain.
	Entity string `yaml:"entity"`

	// Ref names an entity instance across steps. save creates the instance
	// on first use and updates it afterwards; delete requires it.
	Ref string `yaml:"ref,omitempty"`

	// Fields are assigned by field name before a save.
	Fields map[string]any `yaml:"fields,omitempty"`

	// ID is the key for find_by_id.
	ID *int64 `yaml:"id,omitempty"`

	// Column and Value filter find_all_by_column.
	Column string `yaml:"column,omitempty"`
	Value  any    `yaml:"value,omitempty"`

	// Expect checks the step outcome. Nil means the step must not fail.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a step. Unset fields are not
// checked.
type Expect struct {
	// ID is the id of the saved or found entity.
	ID *int64 `yaml:"id,omitempty"`

	// Found is the find_by_id outcome.
	Found *bool `yaml:"found,omitempty"`

	// Count is the number of records a find returned.
	Count *int `yaml:"count,omitempty"`

	// Fields is a subset match against the first record.
	Fields map[string]any `yaml:"fields,omitempty"`

	// Error is the expected error kind (CONFIGURATION, STORE, CONVERSION,
	// MAPPING).
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace or final table contents.
type Assertion struct {
	// Type is final_state, row_count or trace_count.
	Type string `yaml:"type"`

	// Table is the table to query (final_state, row_count).
	Table string `yaml:"table,omitempty"`

	// Where filters the table by exact column values.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect is a subset match against the single matching row (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Op is the step operation to count (trace_count).
	Op string `yaml:"op,omitempty"`

	// Count is the expected row or event count.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
	AssertRowCount   = "row_count"
	AssertTraceCount = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file %s: %w", path, err)
	}
	return ParseScenario(data, path)
}

// ParseScenario parses scenario YAML. source is used in error messages.
func ParseScenario(data []byte, source string) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", source, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", source, err)
	}
	return &s, nil
}

// Validate checks required fields and per-op arguments.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, sql := range s.Setup {
		if sql == "" {
			return fmt.Errorf("setup[%d]: empty statement", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	if step.Entity == "" {
		return fmt.Errorf("steps[%d]: entity is required", index)
	}
	if _, ok := binders[step.Entity]; !ok {
		return fmt.Errorf("steps[%d]: unknown entity %q", index, step.Entity)
	}

	switch step.Op {
	case OpSave:
		if len(step.Fields) == 0 && step.Ref == "" {
			return fmt.Errorf("steps[%d]: save needs fields or a ref", index)
		}
	case OpFindByID:
		if step.ID == nil {
			return fmt.Errorf("steps[%d]: id is required for find_by_id", index)
		}
	case OpFindAll:
	case OpFindAllByColumn:
		if step.Column == "" {
			return fmt.Errorf("steps[%d]: column is required for find_all_by_column", index)
		}
	case OpDelete:
		if step.Ref == "" {
			return fmt.Errorf("steps[%d]: ref is required for delete", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertRowCount:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for row_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

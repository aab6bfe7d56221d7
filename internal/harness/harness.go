package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/arec/internal/activerecord"
	"github.com/roach88/arec/internal/demo"
	"github.com/roach88/arec/internal/store"
)

// Session is the fixed session id every scenario runs under.
const Session = "scenario"

// Harness executes one scenario against its own database.
type Harness struct {
	store  *store.Store
	db     *activerecord.DB
	logger *slog.Logger

	// refs holds entities named by Step.Ref, keyed by ref
	refs map[string]ref
}

type ref struct {
	entity string
	value  any
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with the demo schema, so
// ids and traces are reproducible. A nil logger discards output.
//
// Failed expectations and assertions are reported in the Result; the
// returned error is reserved for scenarios that cannot be executed at all
// (bad setup SQL, unknown refs, fields that cannot be assigned).
func Run(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := demo.Setup(ctx, st); err != nil {
		return nil, err
	}

	db, err := activerecord.New(st,
		activerecord.WithLogger(logger),
		activerecord.WithSession(Session),
	)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:  st,
		db:     db,
		logger: logger.With("scenario", scenario.Name),
		refs:   make(map[string]ref),
	}

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	actx := &AssertionContext{Conn: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished", "pass", result.Pass, "steps", len(result.Trace))
	return result, nil
}

func (h *Harness) executeSetup(ctx context.Context, setup []string) error {
	for i, sql := range setup {
		if _, err := h.store.ExecContext(ctx, sql); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	return nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	b, ok := binders[step.Entity]
	if !ok {
		return fmt.Errorf("unknown entity %q", step.Entity)
	}

	event := TraceEvent{
		Step:    index + 1,
		Op:      step.Op,
		Entity:  step.Entity,
		Records: []map[string]any{},
	}

	var opErr error
	var records []any

	switch step.Op {
	case OpSave:
		e, err := h.resolve(step, b, true)
		if err != nil {
			return err
		}
		if err := b.Assign(h.db, e, step.Fields); err != nil {
			return err
		}
		opErr = b.Save(ctx, h.db, e)
		records = []any{e}

	case OpDelete:
		e, err := h.resolve(step, b, false)
		if err != nil {
			return err
		}
		opErr = b.Delete(ctx, h.db, e)
		records = []any{e}

	case OpFindByID:
		e, found, err := b.FindByID(ctx, h.db, *step.ID)
		opErr = err
		event.Found = &found
		if found {
			records = []any{e}
		}

	case OpFindAll:
		records, opErr = b.FindAll(ctx, h.db)

	case OpFindAllByColumn:
		records, opErr = b.FindAllByColumn(ctx, h.db, step.Column, step.Value)

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	for _, r := range records {
		snap, err := b.Snapshot(h.db, r)
		if err != nil {
			return err
		}
		event.Records = append(event.Records, snap)
	}
	if opErr != nil {
		event.Error = errorKind(opErr)
		h.logger.Debug("step failed", "step", event.Step, "op", step.Op, "error", opErr)
	}

	result.AddTrace(event)
	checkExpect(event, step, opErr, result)
	return nil
}

// resolve returns the entity named by step.Ref. With create set, an unknown
// or empty ref yields a new instance, remembered under the ref if one is
// given.
func (h *Harness) resolve(step Step, b binder, create bool) (any, error) {
	if r, ok := h.refs[step.Ref]; ok && step.Ref != "" {
		if r.entity != step.Entity {
			return nil, fmt.Errorf("ref %q is a %s, not a %s", step.Ref, r.entity, step.Entity)
		}
		return r.value, nil
	}
	if !create {
		return nil, fmt.Errorf("unknown ref %q", step.Ref)
	}
	e := b.New()
	if step.Ref != "" {
		h.refs[step.Ref] = ref{entity: step.Entity, value: e}
	}
	return e, nil
}

func errorKind(err error) string {
	var ae *activerecord.Error
	if errors.As(err, &ae) {
		return string(ae.Kind)
	}
	return "UNKNOWN"
}

func checkExpect(event TraceEvent, step Step, opErr error, result *Result) {
	prefix := fmt.Sprintf("step %d (%s %s)", event.Step, step.Op, step.Entity)
	exp := step.Expect

	if exp != nil && exp.Error != "" {
		if event.Error != exp.Error {
			result.AddError(fmt.Sprintf("%s: expected %s error, got %q", prefix, exp.Error, event.Error))
		}
		return
	}
	if opErr != nil {
		result.AddError(fmt.Sprintf("%s: unexpected error: %v", prefix, opErr))
		return
	}
	if exp == nil {
		return
	}

	if exp.Found != nil {
		if event.Found == nil || *event.Found != *exp.Found {
			result.AddError(fmt.Sprintf("%s: expected found=%v", prefix, *exp.Found))
		}
	}
	if exp.Count != nil && len(event.Records) != *exp.Count {
		result.AddError(fmt.Sprintf("%s: expected %d records, got %d", prefix, *exp.Count, len(event.Records)))
	}
	if exp.ID == nil && len(exp.Fields) == 0 {
		return
	}

	if len(event.Records) == 0 {
		result.AddError(fmt.Sprintf("%s: expected a record, got none", prefix))
		return
	}
	first := event.Records[0]
	if exp.ID != nil && !valuesEqual(*exp.ID, first["id"]) {
		result.AddError(fmt.Sprintf("%s: expected id %d, got %v", prefix, *exp.ID, first["id"]))
	}
	for _, name := range sortedKeys(exp.Fields) {
		want := exp.Fields[name]
		got, ok := first[name]
		if !ok {
			result.AddError(fmt.Sprintf("%s: record has no field %q", prefix, name))
			continue
		}
		if !valuesEqual(want, got) {
			result.AddError(fmt.Sprintf("%s: field %s = %v, want %v", prefix, name, got, want))
		}
	}
}

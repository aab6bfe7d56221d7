package harness

// TraceEvent records the observable outcome of one scenario step.
type TraceEvent struct {
	// Step is the 1-based index of the step in the scenario.
	Step int `json:"step"`

	// Op is the step operation (save, find_by_id, ...).
	Op string `json:"op"`

	// Entity is the scenario name of the entity type.
	Entity string `json:"entity"`

	// Found is set for find_by_id only.
	Found *bool `json:"found,omitempty"`

	// Records holds field snapshots: the saved or deleted entity, or the
	// rows a find returned. Each snapshot includes "id" when the entity has
	// one.
	Records []map[string]any `json:"records"`

	// Error is the error kind when the step failed.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}

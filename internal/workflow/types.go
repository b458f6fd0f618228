// Package workflow implements the Workflow Sequencer (spec §3, §5): loading
// a declarative step list, substituting variables, evaluating conditions,
// dispatching tool calls, and persisting run state across steps.
package workflow

import "time"

// Step is one node in a workflow's step list (spec §5 "Workflow step").
type Step struct {
	ID        string                 `yaml:"id" json:"id"`
	Tool      string                 `yaml:"tool" json:"tool"`
	Arguments map[string]interface{} `yaml:"arguments" json:"arguments"`

	// If, when set, is a CEL expression; the step is skipped (not failed)
	// when it evaluates false.
	If string `yaml:"if,omitempty" json:"if,omitempty"`

	// Next overrides sequential advancement: a step id, or a CEL-expression
	// keyed branch table evaluated in order with a default fallback.
	Next       string            `yaml:"next,omitempty" json:"next,omitempty"`
	NextRules  []BranchRule      `yaml:"next_rules,omitempty" json:"next_rules,omitempty"`

	ContinueOnError bool   `yaml:"continue_on_error,omitempty" json:"continue_on_error,omitempty"`
	FallbackID      string `yaml:"fallback_id,omitempty" json:"fallback_id,omitempty"`
	Retries         int    `yaml:"retries,omitempty" json:"retries,omitempty"`

	// OutputParser is a CEL expression evaluated against the tool's raw
	// result to project it down to the fields later steps care about.
	OutputParser string `yaml:"output_parser,omitempty" json:"output_parser,omitempty"`

	TimeoutMS int64 `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
}

// BranchRule is one row of a Next branch table, evaluated top-to-bottom;
// the first rule whose When expression is true (or the empty default rule)
// wins (spec §5 "branch operator").
type BranchRule struct {
	When string `yaml:"when,omitempty" json:"when,omitempty"` // empty means default/else
	Goto string `yaml:"goto" json:"goto"`
}

// Workflow is a named, ordered step list plus its declared metadata.
type Workflow struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`

	// Selectors holds reusable selector-string fragments addressable from
	// any step argument as `{{selectors.name}}` (spec §5 "a workflow is an
	// ordered list of steps plus ... selectors (reusable fragments)").
	Selectors map[string]interface{} `yaml:"selectors,omitempty" json:"selectors,omitempty"`

	// MaxIterations bounds the sequencer's total step-dispatch count,
	// guarding against a Next cycle that never terminates (spec §5
	// "InfiniteLoop"). 0 means use the engine default.
	MaxIterations int `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"`
}

// StepByID returns the step with id, or nil.
func (w *Workflow) StepByID(id string) *Step {
	for i := range w.Steps {
		if w.Steps[i].ID == id {
			return &w.Steps[i]
		}
	}
	return nil
}

// StepResult is one step's recorded outcome (spec §5 "ExecutionContext").
type StepResult struct {
	StepID    string                 `json:"step_id"`
	Tool      string                 `json:"tool"`
	Output    interface{}            `json:"output,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Skipped   bool                   `json:"skipped,omitempty"`
	StartedAt time.Time              `json:"started_at"`
	EndedAt   time.Time              `json:"ended_at"`
}

// ExecutionContext is the sequencer's run-scoped state: inputs, every step
// result so far, and cursor position, persisted between steps so a run can
// be resumed after a crash or a deliberate pause (spec §5 "Persisted state
// layout").
type ExecutionContext struct {
	RunID       string                `json:"run_id"`
	WorkflowName string               `json:"workflow_name"`
	Inputs      map[string]interface{} `json:"inputs"`
	State       map[string]interface{} `json:"state"`
	Steps       []StepResult          `json:"steps"`
	CurrentStep string                `json:"current_step,omitempty"`
	Iterations  int                   `json:"iterations"`
	Done        bool                  `json:"done"`
	StartedAt   time.Time             `json:"started_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Result looks up a prior step's recorded output by id.
func (ec *ExecutionContext) Result(stepID string) (interface{}, bool) {
	for _, r := range ec.Steps {
		if r.StepID == stepID {
			return r.Output, true
		}
	}
	return nil, false
}

// MergeState merges updates into the run's persisted state bucket (spec §5
// "context.state"), creating the bucket on first use. A step's output may
// carry a "state" key whose value is merged this way after the step runs.
func (ec *ExecutionContext) MergeState(updates map[string]interface{}) {
	if len(updates) == 0 {
		return
	}
	if ec.State == nil {
		ec.State = make(map[string]interface{}, len(updates))
	}
	for k, v := range updates {
		ec.State[k] = v
	}
}

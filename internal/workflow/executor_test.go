package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/workflow/state"
)

// fakeInvoker dispatches tool calls against a fixed table of canned
// responses, and counts calls per tool so tests can assert retry behavior.
type fakeInvoker struct {
	calls     map[string]int
	responses map[string]interface{}
	errors    map[string]error
	failUntil map[string]int
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{
		calls:     map[string]int{},
		responses: map[string]interface{}{},
		errors:    map[string]error{},
		failUntil: map[string]int{},
	}
}

func (f *fakeInvoker) InvokeTool(ctx context.Context, tool string, args map[string]interface{}) (interface{}, error) {
	f.calls[tool]++
	if n := f.failUntil[tool]; n > 0 && f.calls[tool] <= n {
		return nil, errs.New(errs.KindTimeout, "transient failure for %s", tool)
	}
	if err, ok := f.errors[tool]; ok {
		return nil, err
	}
	return f.responses[tool], nil
}

func testExecutor(t *testing.T, invoker ToolInvoker) *Executor {
	t.Helper()
	store := state.New(t.TempDir(), nil)
	x, err := NewExecutor(invoker, store, logging.New("error", "text"), nil)
	require.NoError(t, err)
	return x
}

func TestExecutor_RunsStepsSequentially(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["click_element"] = map[string]interface{}{"ok": true}
	invoker.responses["type_into_element"] = map[string]interface{}{"ok": true}

	wf := &Workflow{
		Name: "login",
		Steps: []Step{
			{ID: "a", Tool: "click_element"},
			{ID: "b", Tool: "type_into_element"},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.NoError(t, err)
	assert.True(t, ec.Done)
	require.Len(t, ec.Steps, 2)
	assert.Equal(t, "a", ec.Steps[0].StepID)
	assert.Equal(t, "b", ec.Steps[1].StepID)
}

func TestExecutor_SkipsStepWhenIfIsFalse(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["click_element"] = map[string]interface{}{"ok": true}

	wf := &Workflow{
		Name: "conditional",
		Steps: []Step{
			{ID: "a", Tool: "click_element", If: "1 == 2"},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.NoError(t, err)
	require.Len(t, ec.Steps, 1)
	assert.True(t, ec.Steps[0].Skipped)
	assert.Zero(t, invoker.calls["click_element"])
}

func TestExecutor_FailedStepStopsRunByDefault(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.errors["click_element"] = errs.New(errs.KindElementNotFound, "missing")

	wf := &Workflow{
		Name: "fails",
		Steps: []Step{
			{ID: "a", Tool: "click_element"},
			{ID: "b", Tool: "noop"},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.Error(t, err)
	assert.False(t, ec.Done)
	assert.Zero(t, invoker.calls["noop"])
}

func TestExecutor_ContinueOnErrorAdvancesPastFailure(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.errors["click_element"] = errs.New(errs.KindElementNotFound, "missing")
	invoker.responses["noop"] = "done"

	wf := &Workflow{
		Name: "continues",
		Steps: []Step{
			{ID: "a", Tool: "click_element", ContinueOnError: true},
			{ID: "b", Tool: "noop"},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.NoError(t, err)
	assert.True(t, ec.Done)
	assert.Equal(t, 1, invoker.calls["noop"])
}

func TestExecutor_FallbackIDRoutesOnFailure(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.errors["click_element"] = errs.New(errs.KindElementNotFound, "missing")
	invoker.responses["recover"] = "ok"

	wf := &Workflow{
		Name: "fallback",
		Steps: []Step{
			{ID: "a", Tool: "click_element", FallbackID: "rescue"},
			{ID: "rescue", Tool: "recover"},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.NoError(t, err)
	assert.True(t, ec.Done)
	assert.Equal(t, 1, invoker.calls["recover"])
}

func TestExecutor_NextRulesPickFirstMatchingBranch(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["decide"] = map[string]interface{}{"status": "ok"}
	invoker.responses["success_path"] = "done"
	invoker.responses["error_path"] = "done"

	wf := &Workflow{
		Name: "branching",
		Steps: []Step{
			{
				ID: "decide", Tool: "decide",
				NextRules: []BranchRule{
					{When: `$.status == "error"`, Goto: "error_path"},
					{When: `$.status == "ok"`, Goto: "success_path"},
				},
			},
			{ID: "error_path", Tool: "error_path"},
			{ID: "success_path", Tool: "success_path"},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, invoker.calls["success_path"])
	assert.Zero(t, invoker.calls["error_path"])
	_ = ec
}

func TestExecutor_RetriesTransientFailureUpToStepRetries(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.failUntil["click_element"] = 2 // fails twice, succeeds on 3rd call
	invoker.responses["click_element"] = "ok"

	wf := &Workflow{
		Name: "retries",
		Steps: []Step{
			{ID: "a", Tool: "click_element", Retries: 2},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.NoError(t, err)
	assert.True(t, ec.Done)
	assert.Equal(t, 3, invoker.calls["click_element"])
}

func TestExecutor_UnknownStepReferenceErrors(t *testing.T) {
	invoker := newFakeInvoker()
	wf := &Workflow{
		Name: "badref",
		Steps: []Step{
			{ID: "a", Tool: "click_element", Next: "missing_step"},
		},
	}
	invoker.responses["click_element"] = "ok"

	x := testExecutor(t, invoker)
	_, err := x.Run(context.Background(), wf, RunOptions{})
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindUnknownStepRef, e.Kind)
}

func TestExecutor_InfiniteLoopIsBoundedByMaxIterations(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["spin"] = "again"

	wf := &Workflow{
		Name:          "loopy",
		MaxIterations: 3,
		Steps: []Step{
			{ID: "a", Tool: "spin", Next: "a"},
		},
	}

	x := testExecutor(t, invoker)
	_, err := x.Run(context.Background(), wf, RunOptions{})
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindInfiniteLoop, e.Kind)
}

func TestExecutor_ResumePicksUpAtPersistedCurrentStep(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["a"] = "done-a"
	invoker.responses["b"] = "done-b"

	wf := &Workflow{
		Name: "resumable",
		Steps: []Step{
			{ID: "a", Tool: "a"},
			{ID: "b", Tool: "b"},
		},
	}

	store := state.New(t.TempDir(), nil)
	x, err := NewExecutor(invoker, store, logging.New("error", "text"), nil)
	require.NoError(t, err)

	// Simulate a crash after step "a" by hand-persisting a not-done context.
	require.NoError(t, store.Save(&ExecutionContext{
		RunID: "run-1", WorkflowName: "resumable", CurrentStep: "b", Done: false,
		Steps: []StepResult{{StepID: "a", Tool: "a", Output: "done-a"}},
	}))

	ec, err := x.Run(context.Background(), wf, RunOptions{Resume: true})
	require.NoError(t, err)
	assert.True(t, ec.Done)
	assert.Zero(t, invoker.calls["a"])
	assert.Equal(t, 1, invoker.calls["b"])
}

func TestExecutor_StepOutputMergesIntoState(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["attempt"] = map[string]interface{}{"state": map[string]interface{}{"retries": int64(1)}}

	wf := &Workflow{
		Name: "stateful",
		Steps: []Step{
			{ID: "attempt", Tool: "attempt"},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), ec.State["retries"])
}

func TestExecutor_NextRulesBranchOnState(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["attempt"] = map[string]interface{}{"state": map[string]interface{}{"success": true}}
	invoker.responses["complete"] = "done"
	invoker.responses["fail"] = "done"

	wf := &Workflow{
		Name: "loop_with_state",
		Steps: []Step{
			{
				ID: "attempt", Tool: "attempt",
				NextRules: []BranchRule{
					{When: "state.success", Goto: "complete"},
					{When: "!state.success", Goto: "fail"},
				},
			},
			{ID: "fail", Tool: "fail"},
			{ID: "complete", Tool: "complete"},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, invoker.calls["complete"])
	assert.Zero(t, invoker.calls["fail"])
	_ = ec
}

func TestExecutor_ResumePreservesPersistedState(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["b"] = "done-b"

	wf := &Workflow{
		Name: "resumable_state",
		Steps: []Step{
			{ID: "a", Tool: "a"},
			{ID: "b", Tool: "b", If: "state.x == 1.0"},
		},
	}

	store := state.New(t.TempDir(), nil)
	x, err := NewExecutor(invoker, store, logging.New("error", "text"), nil)
	require.NoError(t, err)

	require.NoError(t, store.Save(&ExecutionContext{
		RunID: "run-1", WorkflowName: "resumable_state", CurrentStep: "b", Done: false,
		State: map[string]interface{}{"x": 1},
		Steps: []StepResult{{StepID: "a", Tool: "a", Output: "done-a"}},
	}))

	ec, err := x.Run(context.Background(), wf, RunOptions{Resume: true})
	require.NoError(t, err)
	assert.True(t, ec.Done)
	assert.Equal(t, 1, invoker.calls["b"])
	assert.Equal(t, float64(1), ec.State["x"])
}

func TestExecutor_OutputParserProjectsResult(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["fetch"] = map[string]interface{}{"nested": map[string]interface{}{"value": 42.0}}

	wf := &Workflow{
		Name: "parsed",
		Steps: []Step{
			{ID: "a", Tool: "fetch", OutputParser: "$.nested.value"},
		},
	}

	x := testExecutor(t, invoker)
	ec, err := x.Run(context.Background(), wf, RunOptions{})
	require.NoError(t, err)
	require.Len(t, ec.Steps, 1)
	assert.Equal(t, 42.0, ec.Steps[0].Output)
}

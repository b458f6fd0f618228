// Package workflow implements the sequencer: it walks a Workflow's steps,
// substituting variables, evaluating CEL guards, invoking tools through a
// ToolInvoker, and deciding the next step the way the teacher's
// operators.BranchOperator/LoopOperator pair evaluates rules in order with a
// default fallback, adapted here into a single-threaded step sequencer
// instead of a distributed node-router.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/workflow/condition"
	"github.com/terminator-run/terminator/internal/workflow/state"
	"github.com/terminator-run/terminator/internal/workflow/subst"
)

// ToolInvoker dispatches a single tool call (an MCP tool name plus its
// resolved arguments) and returns the tool's result. The Tool Server package
// supplies the concrete implementation; workflow never imports it, to avoid
// a dependency cycle (the server depends on workflow, not the reverse).
type ToolInvoker interface {
	InvokeTool(ctx context.Context, tool string, args map[string]interface{}) (interface{}, error)
}

// RunOptions configures a single execution of a workflow.
type RunOptions struct {
	Inputs        map[string]interface{}
	StartFromStep string
	EndAtStep     string
	Resume        bool
}

// Executor ties together a Workflow definition, persisted state, condition
// evaluation, variable substitution and tool dispatch into the sequencer
// loop.
type Executor struct {
	invoker ToolInvoker
	store   *state.Store
	eval    *condition.Evaluator
	log     *logging.Logger
	events  *EventSink
}

// NewExecutor builds an Executor. events may be nil to suppress progress
// events (e.g. in tests).
func NewExecutor(invoker ToolInvoker, store *state.Store, log *logging.Logger, events *EventSink) (*Executor, error) {
	eval, err := condition.NewEvaluator()
	if err != nil {
		return nil, errs.Wrap(err, errs.KindInternalError, "building condition evaluator")
	}
	return &Executor{invoker: invoker, store: store, eval: eval, log: log, events: events}, nil
}

func (x *Executor) emit(ev Event) {
	if x.events != nil {
		x.events.Emit(ev)
	}
}

// Run executes wf from start to completion (or to EndAtStep), persisting
// state after every step so a crash mid-run can be resumed with
// RunOptions.Resume.
func (x *Executor) Run(ctx context.Context, wf *Workflow, opts RunOptions) (*ExecutionContext, error) {
	release, err := x.store.Lock(ctx, wf.Name)
	if err != nil {
		return nil, err
	}
	defer release()

	ec, err := x.loadOrInit(wf, opts)
	if err != nil {
		return nil, err
	}

	maxIter := wf.MaxIterations
	if maxIter <= 0 {
		maxIter = 1000
	}

	stepID := x.startingStep(wf, ec, opts)
	for stepID != "" {
		if ec.Iterations >= maxIter {
			return ec, errs.New(errs.KindInfiniteLoop, "workflow %q exceeded %d iterations", wf.Name, maxIter)
		}
		ec.Iterations++

		step := wf.StepByID(stepID)
		if step == nil {
			return ec, errs.New(errs.KindUnknownStepRef, "workflow %q references unknown step %q", wf.Name, stepID)
		}

		ec.CurrentStep = stepID
		next, err := x.runStep(ctx, wf, ec, step)
		if err != nil {
			if !step.ContinueOnError {
				ec.Done = false
				_ = x.store.Save(ec)
				return ec, err
			}
		}
		if err := x.store.Save(ec); err != nil {
			return ec, err
		}

		if opts.EndAtStep != "" && stepID == opts.EndAtStep {
			return ec, nil
		}
		stepID = next
	}

	ec.Done = true
	ec.UpdatedAt = time.Now()
	if err := x.store.Save(ec); err != nil {
		return ec, err
	}
	x.emit(Event{RunID: ec.RunID, Type: "run_completed"})
	return ec, nil
}

func (x *Executor) loadOrInit(wf *Workflow, opts RunOptions) (*ExecutionContext, error) {
	if opts.Resume {
		existing, err := x.store.Load(wf.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	return &ExecutionContext{
		RunID:        uuid.NewString(),
		WorkflowName: wf.Name,
		Inputs:       opts.Inputs,
		State:        make(map[string]interface{}),
		StartedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

func (x *Executor) startingStep(wf *Workflow, ec *ExecutionContext, opts RunOptions) string {
	if opts.StartFromStep != "" {
		return opts.StartFromStep
	}
	if opts.Resume && ec.CurrentStep != "" && !ec.Done {
		return ec.CurrentStep
	}
	if len(wf.Steps) == 0 {
		return ""
	}
	return wf.Steps[0].ID
}

// runStep executes one step and returns the ID of the next step to run (""
// ends the run).
func (x *Executor) runStep(ctx context.Context, wf *Workflow, ec *ExecutionContext, step *Step) (string, error) {
	scope := x.scopeFor(wf, ec)

	if step.If != "" {
		met, err := x.eval.EvaluateBool(step.If, condition.Vars{
			Ctx: map[string]interface{}{"run_id": ec.RunID}, Steps: scope.Steps, Inputs: scope.Inputs, State: ec.State,
		})
		if err != nil {
			x.log.Error("step condition evaluation failed", "step", step.ID, "expr", step.If, "error", err)
			return "", errs.Wrap(err, errs.KindOutputParserError, "evaluating if for step %q", step.ID)
		}
		if !met {
			ec.Steps = append(ec.Steps, StepResult{StepID: step.ID, Skipped: true, StartedAt: time.Now(), EndedAt: time.Now()})
			return x.nextAfter(wf, step, ec, nil), nil
		}
	}

	args, err := x.resolveArgs(step.Arguments, scope)
	if err != nil {
		return "", errs.Wrap(err, errs.KindUnresolvedVariable, "resolving arguments for step %q", step.ID)
	}

	x.emit(Event{RunID: ec.RunID, StepID: step.ID, Type: "step_started"})
	started := time.Now()

	output, callErr := x.invokeWithRetry(ctx, step, args)

	result := StepResult{StepID: step.ID, Tool: step.Tool, Output: output, StartedAt: started, EndedAt: time.Now()}
	if callErr != nil {
		result.Error = callErr.Error()
		x.emit(Event{RunID: ec.RunID, StepID: step.ID, Type: "step_failed", Data: map[string]interface{}{"error": callErr.Error()}})
	} else {
		x.emit(Event{RunID: ec.RunID, StepID: step.ID, Type: "step_completed"})
	}
	ec.Steps = append(ec.Steps, result)

	if callErr == nil {
		mergeStepState(ec, output)
	}

	if callErr != nil && step.FallbackID != "" {
		return step.FallbackID, nil
	}
	if callErr != nil && !step.ContinueOnError {
		return "", callErr
	}

	if step.OutputParser != "" {
		parsed, err := x.eval.Evaluate(step.OutputParser, condition.Vars{Output: output, Steps: x.scopeFor(wf, ec).Steps, Inputs: scope.Inputs, State: ec.State})
		if err != nil {
			return "", errs.Wrap(err, errs.KindOutputParserError, "applying output_parser for step %q", step.ID)
		}
		ec.Steps[len(ec.Steps)-1].Output = parsed
		output = parsed
		mergeStepState(ec, output)
	}

	return x.nextAfter(wf, step, ec, output), nil
}

// mergeStepState implements the "State output" rule (spec §5): a step whose
// output is a map carrying a "state" key merges that key's map value into
// ec.State. setState({...}) calls from a tool are expected to arrive the
// same way, as a {"state": {...}} entry in the tool's returned result.
func mergeStepState(ec *ExecutionContext, output interface{}) {
	m, ok := output.(map[string]interface{})
	if !ok {
		return
	}
	raw, ok := m["state"]
	if !ok {
		return
	}
	updates, ok := raw.(map[string]interface{})
	if !ok {
		return
	}
	ec.MergeState(updates)
}

func (x *Executor) invokeWithRetry(ctx context.Context, step *Step, args map[string]interface{}) (interface{}, error) {
	attempts := step.Retries + 1
	if attempts < 1 {
		attempts = 1
	}
	callCtx := ctx
	if step.TimeoutMS > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, time.Duration(step.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		output, err := x.invoker.InvokeTool(callCtx, step.Tool, args)
		if err == nil {
			return output, nil
		}
		lastErr = err
		if !errs.Transient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (x *Executor) resolveArgs(raw map[string]interface{}, scope subst.Scope) (map[string]interface{}, error) {
	resolved := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		rv, err := subst.ResolveValue(v, scope)
		if err != nil {
			return nil, err
		}
		resolved[k] = rv
	}
	return resolved, nil
}

func (x *Executor) scopeFor(wf *Workflow, ec *ExecutionContext) subst.Scope {
	steps := make(map[string]interface{}, len(ec.Steps))
	for _, r := range ec.Steps {
		steps[r.StepID] = map[string]interface{}{"result": r.Output, "error": r.Error, "skipped": r.Skipped}
	}
	return subst.Scope{Inputs: ec.Inputs, Steps: steps, State: ec.State, Selectors: wf.Selectors}
}

// nextAfter resolves step.Next / step.NextRules / fallthrough into the next
// step ID, evaluating branch rules in order with a default of step.Next
// (grounded on the teacher's BranchOperator.HandleBranch: rules checked in
// order, first match wins, fall through to a default when none match).
func (x *Executor) nextAfter(wf *Workflow, step *Step, ec *ExecutionContext, output interface{}) string {
	if len(step.NextRules) > 0 {
		scope := x.scopeFor(wf, ec)
		for i, rule := range step.NextRules {
			if rule.When == "" {
				return rule.Goto
			}
			met, err := x.eval.EvaluateBool(rule.When, condition.Vars{Output: output, Steps: scope.Steps, Inputs: scope.Inputs, State: ec.State})
			if err != nil {
				x.log.Warn("next_rules evaluation failed", "step", step.ID, "rule_index", i, "error", err)
				continue
			}
			if met {
				return rule.Goto
			}
		}
	}
	if step.Next != "" {
		return step.Next
	}
	return x.defaultNext(wf, step)
}

func (x *Executor) defaultNext(wf *Workflow, step *Step) string {
	for i, s := range wf.Steps {
		if s.ID == step.ID {
			if i+1 < len(wf.Steps) {
				return wf.Steps[i+1].ID
			}
			return ""
		}
	}
	return ""
}

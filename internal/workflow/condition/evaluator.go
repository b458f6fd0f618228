// Package condition evaluates the CEL expressions used by a workflow step's
// if/next_rules/output_parser fields, adapted directly from the teacher's
// workflow-runner condition evaluator: a compiled-program cache guarded by
// an RWMutex, keyed on the normalized expression text (spec §5).
package condition

import (
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/terminator-run/terminator/internal/errs"
)

// Evaluator compiles and caches CEL programs for workflow expressions.
type Evaluator struct {
	env   *cel.Env
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator builds an Evaluator with the variable bindings every
// workflow expression may reference: the current step's raw tool output,
// the full run context (inputs and prior step results), and the
// substitution-resolved variables in scope.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("output", cel.DynType),
		cel.Variable("ctx", cel.DynType),
		cel.Variable("steps", cel.DynType),
		cel.Variable("inputs", cel.DynType),
		cel.Variable("state", cel.DynType),
	)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindInternalError, "failed to create CEL environment")
	}
	return &Evaluator{env: env, cache: make(map[string]cel.Program)}, nil
}

// Vars is the variable binding passed into Eval.
type Vars struct {
	Output interface{}
	Ctx    map[string]interface{}
	Steps  map[string]interface{}
	Inputs map[string]interface{}
	State  map[string]interface{}
}

// EvaluateBool compiles (or reuses a cached compile of) expr and evaluates
// it to a boolean, for if/next_rules expressions.
func (e *Evaluator) EvaluateBool(expr string, vars Vars) (bool, error) {
	out, err := e.Evaluate(expr, vars)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, errs.New(errs.KindOutputParserError, "expression %q did not evaluate to a boolean, got %T", expr, out)
	}
	return b, nil
}

// Evaluate compiles (or reuses a cached compile of) expr and evaluates it,
// returning the raw result value (used by output_parser, which may project
// onto any type, not just bool).
func (e *Evaluator) Evaluate(expr string, vars Vars) (interface{}, error) {
	normalized := strings.ReplaceAll(expr, "$.", "output.")

	prg, err := e.compiled(normalized)
	if err != nil {
		return nil, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"output": vars.Output,
		"ctx":    vars.Ctx,
		"steps":  vars.Steps,
		"inputs": vars.Inputs,
		"state":  vars.State,
	})
	if err != nil {
		return nil, errs.Wrap(err, errs.KindOutputParserError, "evaluating expression %q", expr)
	}
	return out.Value(), nil
}

func (e *Evaluator) compiled(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.cache[expr]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errs.Wrap(issues.Err(), errs.KindInvalidArgument, "compiling expression %q", expr)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindInternalError, "building CEL program for %q", expr)
	}

	e.mu.Lock()
	e.cache[expr] = prg
	e.mu.Unlock()
	return prg, nil
}

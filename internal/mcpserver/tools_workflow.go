package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/workflow"
	"github.com/terminator-run/terminator/internal/workflow/loader"
)

// workflowTools implements the Workflow category (spec §4.6, §5):
// executing a declarative step sequence end-to-end, and the
// import/export/record helpers around a workflow definition file.
func workflowTools(s *Server) []ToolDef {
	return []ToolDef{
		{
			Name:        "execute_sequence",
			Description: "Run a workflow to completion (or to end_at_step): either load it from a path/URL (source/url) or run an inline steps array ad hoc, persisting state after every step.",
			Schema: objectSchema(map[string]interface{}{
				"source":    stringProp("Workflow source: a filesystem path, file://, or http(s):// URL."),
				"url":       stringProp("Alias of source, matching the wire contract's url field."),
				"steps": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "object"},
					"description": "Ad hoc step list to run without a backing workflow file; an alternative to source/url.",
				},
				"name":                     stringProp("Name for an inline steps run (default \"inline\"); ignored when source/url is given."),
				"overrides":                objectProp("JSON Merge Patch applied to a loaded (source/url) workflow before it runs; ignored for inline steps."),
				"inputs":                   objectProp("Named input values available to steps via {{inputs.*}} substitution."),
				"start_from_step":          stringProp("Step id to begin at, overriding the workflow's first step."),
				"end_at_step":              stringProp("Step id to stop after, leaving the run incomplete by design."),
				"resume":                   boolProp("Resume a previously persisted, unfinished run instead of starting fresh."),
				"stop_on_error":            boolProp("Stop the run on the first step error (default true); false runs every step regardless of per-step continue_on_error."),
				"include_detailed_results": boolProp("Include each step's raw tool output in the result (default true); false returns id/tool/error/skipped only."),
				"verbosity": stringProp("Result detail level: \"summary\" (run id/status only), \"normal\" (default, per-step results), or \"full\" (adds context.state)."),
			}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				wf, runtimeSource, err := loadOrBuildWorkflow(ctx, args)
				if err != nil {
					return nil, err
				}
				if stopOnError, ok := args["stop_on_error"].(bool); ok && !stopOnError {
					for i := range wf.Steps {
						wf.Steps[i].ContinueOnError = true
					}
				}

				exec, err := s.workflowRuntime(runtimeSource)
				if err != nil {
					return nil, err
				}

				opts := workflow.RunOptions{
					Inputs:        argMap(args, "inputs"),
					StartFromStep: mustArgString(args, "start_from_step"),
					EndAtStep:     mustArgString(args, "end_at_step"),
					Resume:        argBool(args, "resume", false),
				}
				ec, runErr := exec.Run(ctx, wf, opts)
				if ec == nil {
					return nil, runErr
				}
				return sequenceResult(ec, args), runErr
			},
		},
		{
			Name:        "import_workflow",
			Description: "Parse and validate a workflow definition from a path or URL without running it.",
			Schema:      objectSchema(map[string]interface{}{"source": stringProp("Workflow source: a filesystem path, file://, or http(s):// URL.")}, "source"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				source, err := requireString(args, "source")
				if err != nil {
					return nil, err
				}
				wf, err := loader.Load(ctx, source, nil)
				if err != nil {
					return nil, err
				}
				ids := make([]string, 0, len(wf.Steps))
				for _, st := range wf.Steps {
					ids = append(ids, st.ID)
				}
				return map[string]interface{}{"name": wf.Name, "description": wf.Description, "step_ids": ids}, nil
			},
		},
		{
			Name:        "export_workflow",
			Description: "Load a workflow definition and return its full parsed structure as JSON.",
			Schema:      objectSchema(map[string]interface{}{"source": stringProp("Workflow source: a filesystem path, file://, or http(s):// URL.")}, "source"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				source, err := requireString(args, "source")
				if err != nil {
					return nil, err
				}
				wf, err := loader.Load(ctx, source, nil)
				if err != nil {
					return nil, err
				}
				return wf, nil
			},
		},
		{
			Name:        "record_workflow",
			Description: "Write a step list (name, description, steps) out as a workflow definition file at the given destination path.",
			Schema: objectSchema(map[string]interface{}{
				"destination": stringProp("Filesystem path the workflow YAML is written to."),
				"name":        stringProp("Workflow name."),
				"description": stringProp("Workflow description."),
				"steps": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "object"},
					"description": "Step definitions, in the same shape execute_sequence consumes.",
				},
			}, "destination", "name", "steps"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				dest, err := requireString(args, "destination")
				if err != nil {
					return nil, err
				}
				name, err := requireString(args, "name")
				if err != nil {
					return nil, err
				}
				rawSteps, ok := args["steps"].([]interface{})
				if !ok || len(rawSteps) == 0 {
					return nil, errs.New(errs.KindInvalidArgument, "steps must be a non-empty array")
				}

				doc := map[string]interface{}{
					"name":        name,
					"description": mustArgString(args, "description"),
					"steps":       rawSteps,
				}
				out, err := yaml.Marshal(doc)
				if err != nil {
					return nil, errs.Wrap(err, errs.KindInternalError, "marshaling workflow definition")
				}
				if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
					return nil, errs.Wrap(err, errs.KindInternalError, "creating destination directory")
				}
				if err := os.WriteFile(dest, out, 0o644); err != nil {
					return nil, errs.Wrap(err, errs.KindInternalError, "writing workflow definition to %q", dest)
				}
				return map[string]interface{}{"written": dest, "bytes": len(out)}, nil
			},
		},
	}
}

// loadOrBuildWorkflow resolves execute_sequence's {steps? | url?, source?}
// alternative inputs (spec §4.6 "execute_sequence contract") into a
// runnable *workflow.Workflow, plus the source string s.workflowRuntime
// should derive its state directory from ("" for an inline, file-less run).
func loadOrBuildWorkflow(ctx context.Context, args map[string]interface{}) (*workflow.Workflow, string, error) {
	if raw, ok := args["steps"].([]interface{}); ok && len(raw) > 0 {
		wf, err := buildInlineWorkflow(args, raw)
		return wf, "", err
	}

	source := mustArgString(args, "source")
	if source == "" {
		source = mustArgString(args, "url")
	}
	if source == "" {
		return nil, "", errs.New(errs.KindInvalidArgument, "execute_sequence requires one of steps, source, or url")
	}
	wf, err := loader.Load(ctx, source, argMap(args, "overrides"))
	return wf, source, err
}

// buildInlineWorkflow synthesizes a Workflow in memory from a raw steps
// array, bypassing loader.Load entirely (spec §4.6 "accepts inline steps").
func buildInlineWorkflow(args map[string]interface{}, raw []interface{}) (*workflow.Workflow, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindInvalidArgument, "encoding inline steps")
	}
	var steps []workflow.Step
	if err := json.Unmarshal(encoded, &steps); err != nil {
		return nil, errs.Wrap(err, errs.KindInvalidArgument, "parsing inline steps")
	}
	if len(steps) == 0 {
		return nil, errs.New(errs.KindInvalidArgument, "inline steps array is empty")
	}
	name := mustArgString(args, "name")
	if name == "" {
		name = "inline"
	}
	return &workflow.Workflow{Name: name, Steps: steps}, nil
}

// sequenceResult shapes execute_sequence's return payload per the
// include_detailed_results and verbosity wire options (spec §4.6).
func sequenceResult(ec *workflow.ExecutionContext, args map[string]interface{}) map[string]interface{} {
	verbosity := mustArgString(args, "verbosity")
	result := map[string]interface{}{
		"run_id":       ec.RunID,
		"workflow":     ec.WorkflowName,
		"done":         ec.Done,
		"current_step": ec.CurrentStep,
	}
	if verbosity == "summary" {
		return result
	}

	result["iterations"] = ec.Iterations
	if argBool(args, "include_detailed_results", true) {
		result["steps"] = ec.Steps
	} else {
		summarized := make([]map[string]interface{}, len(ec.Steps))
		for i, r := range ec.Steps {
			summarized[i] = map[string]interface{}{"step_id": r.StepID, "tool": r.Tool, "error": r.Error, "skipped": r.Skipped}
		}
		result["steps"] = summarized
	}

	if verbosity == "full" {
		result["state"] = ec.State
		result["inputs"] = ec.Inputs
	}
	return result
}

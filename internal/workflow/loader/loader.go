// Package loader loads a Workflow definition from a local path or a
// file://, http:// or https:// URL, applying any JSON Merge Patch overrides
// supplied at call time (spec §5 "workflow source resolution").
package loader

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"gopkg.in/yaml.v3"

	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/workflow"
)

func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// httpTimeout bounds remote workflow fetches.
const httpTimeout = 15 * time.Second

// Load reads a workflow definition from source, which may be a bare
// filesystem path, a file:// URL, or an http(s):// URL, then applies
// overrides (a JSON object merged in with RFC 7396 merge-patch semantics)
// if non-empty.
func Load(ctx context.Context, source string, overrides map[string]interface{}) (*workflow.Workflow, error) {
	raw, err := fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		raw, err = applyOverrides(raw, overrides)
		if err != nil {
			return nil, err
		}
	}

	var wf workflow.Workflow
	if err := yaml.Unmarshal(raw, &wf); err != nil {
		return nil, errs.Wrap(err, errs.KindInvalidArgument, "parsing workflow YAML from %s", source)
	}
	if wf.Name == "" {
		return nil, errs.New(errs.KindInvalidArgument, "workflow at %s has no name", source)
	}
	if len(wf.Steps) == 0 {
		return nil, errs.New(errs.KindInvalidArgument, "workflow %q has no steps", wf.Name)
	}
	return &wf, nil
}

func fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return fetchHTTP(ctx, source)
	}
	if err == nil && u.Scheme == "file" {
		return os.ReadFile(u.Path)
	}
	return os.ReadFile(filepath.Clean(source))
}

func fetchHTTP(ctx context.Context, source string) ([]byte, error) {
	if err := validateSourceURL(source); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindInvalidArgument, "building request for %s", source)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindPlatformError, "fetching workflow from %s", source)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, errs.New(errs.KindPlatformError, "fetching workflow from %s: HTTP %d", source, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// applyOverrides converts the YAML source to JSON, merge-patches it with
// overrides via json-patch/v5, and converts the result back to YAML-
// compatible JSON bytes (yaml.Unmarshal accepts JSON, since JSON is a
// strict subset of YAML 1.2).
func applyOverrides(raw []byte, overrides map[string]interface{}) ([]byte, error) {
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, errs.Wrap(err, errs.KindInvalidArgument, "parsing workflow for override merge")
	}

	baseJSON, err := yamlValueToJSON(generic)
	if err != nil {
		return nil, err
	}
	patchJSON, err := yamlValueToJSON(overrides)
	if err != nil {
		return nil, err
	}

	merged, err := jsonpatch.MergePatch(baseJSON, patchJSON)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindInvalidArgument, "applying workflow overrides")
	}
	return merged, nil
}

func yamlValueToJSON(v interface{}) ([]byte, error) {
	// yaml.v3 decodes mappings as map[string]interface{} already (unlike
	// yaml.v2's map[interface{}]interface{}), so a direct json.Marshal
	// round-trips cleanly.
	return marshalJSON(v)
}

// Dir returns the state directory a workflow's execution context should be
// persisted under, given the workflow's own source location (spec §5
// "<workflowDir>/.workflow_state/<name>.json").
func Dir(source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return "."
	}
	u, err := url.Parse(source)
	if err == nil && u.Scheme == "file" {
		return filepath.Dir(u.Path)
	}
	return filepath.Dir(source)
}

// Package subst resolves {{var}} placeholders inside a workflow step's
// arguments, adapted from the teacher's resolver package: recursive
// traversal over maps/slices/strings, gjson for field-path extraction, and
// a single interpolation pass for strings that mix literal text with one or
// more placeholders (spec §5 "variable substitution").
package subst

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/terminator-run/terminator/internal/errs"
)

func marshalCompact(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Scope is the variable namespace a {{...}} placeholder is resolved
// against: "inputs.foo", "steps.step1.result.bar", "env.FOO" (spec §5).
type Scope struct {
	Inputs    map[string]interface{}
	Steps     map[string]interface{}
	State     map[string]interface{}
	Selectors map[string]interface{}
	Env       map[string]string
}

func (s Scope) asJSON() string {
	var b strings.Builder
	b.WriteString("{")
	writeField(&b, "inputs", s.Inputs)
	b.WriteString(",")
	writeField(&b, "steps", s.Steps)
	b.WriteString(",")
	writeField(&b, "state", s.State)
	b.WriteString(",")
	writeField(&b, "selectors", s.Selectors)
	b.WriteString(",")
	writeEnvField(&b, s.Env)
	b.WriteString("}")
	return b.String()
}

func writeField(b *strings.Builder, name string, v map[string]interface{}) {
	fmt.Fprintf(b, "%q:", name)
	data, err := marshalCompact(v)
	if err != nil {
		b.WriteString("{}")
		return
	}
	b.Write(data)
}

func writeEnvField(b *strings.Builder, env map[string]string) {
	b.WriteString(`"env":`)
	data, err := marshalCompact(env)
	if err != nil {
		b.WriteString("{}")
		return
	}
	b.Write(data)
}

// ResolveValue recursively resolves every {{...}} placeholder reachable
// inside value (a string, map, slice, or primitive straight from a parsed
// workflow argument bag).
func ResolveValue(value interface{}, scope Scope) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return resolveString(v, scope)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			resolved, err := ResolveValue(val, scope)
			if err != nil {
				return nil, fmt.Errorf("resolving key %q: %w", k, err)
			}
			out[k] = resolved
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			resolved, err := ResolveValue(val, scope)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

// resolveString handles a single string value: a bare "{{path}}" resolves
// to the underlying typed value (so numbers/bools/objects survive), while
// text with embedded "{{path}}" placeholders is string-interpolated. A
// "?{{path}}" placeholder (spec §5 "optional placeholder") is resolved the
// same way when present, but an unresolved one passes through literally
// ("?{{path}}") instead of raising UnresolvedVariable.
func resolveString(s string, scope Scope) (interface{}, error) {
	trimmed := strings.TrimSpace(s)
	if isBarePlaceholder(trimmed) {
		optional, open := strings.HasPrefix(trimmed, "?{{"), strings.Index(trimmed, "{{")
		path := strings.TrimSpace(trimmed[open+2 : len(trimmed)-2])
		val, ok, err := lookup(path, scope, optional)
		if err != nil {
			return nil, err
		}
		if !ok {
			return trimmed, nil
		}
		return val, nil
	}
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var out strings.Builder
	rest := s
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		optional := start > 0 && rest[start-1] == '?'
		tokenStart := start
		if optional {
			tokenStart--
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:tokenStart])
		path := strings.TrimSpace(rest[start+2 : start+end])
		val, ok, err := lookup(path, scope, optional)
		if err != nil {
			return nil, err
		}
		if !ok {
			out.WriteString(rest[tokenStart : start+end+2])
		} else {
			out.WriteString(fmt.Sprintf("%v", val))
		}
		rest = rest[start+end+2:]
	}
	return out.String(), nil
}

// isBarePlaceholder reports whether trimmed is exactly one "{{path}}" or
// "?{{path}}" placeholder with no surrounding literal text.
func isBarePlaceholder(trimmed string) bool {
	body := trimmed
	if strings.HasPrefix(body, "?") {
		body = body[1:]
	}
	return strings.HasPrefix(body, "{{") && strings.HasSuffix(body, "}}") && strings.Count(body, "{{") == 1
}

// lookup resolves a dotted path ("steps.step1.result.items.0.name",
// "inputs.url", "selectors.name", "env.HOME") against scope using gjson.
// When optional is true, an unresolved path reports ok=false instead of an
// error, so the caller can fall back to the placeholder's literal text.
func lookup(path string, scope Scope, optional bool) (interface{}, bool, error) {
	if strings.HasPrefix(path, "env.") {
		key := strings.TrimPrefix(path, "env.")
		if v, ok := scope.Env[key]; ok {
			return v, true, nil
		}
		if optional {
			return nil, false, nil
		}
		return nil, false, errs.New(errs.KindUnresolvedVariable, "environment variable %q is not set", key)
	}

	root := scope.asJSON()
	result := gjson.Get(root, path)
	if !result.Exists() {
		if optional {
			return nil, false, nil
		}
		return nil, false, errs.New(errs.KindUnresolvedVariable, "variable %q did not resolve", path).WithVariables(map[string]interface{}{"path": path})
	}
	return result.Value(), true, nil
}

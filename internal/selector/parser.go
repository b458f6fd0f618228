package selector

import (
	"strconv"
	"strings"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/platform"
)

// Parse compiles a selector string into a Chain (spec §4.3, §8 invariant:
// parsing is total and deterministic — the same string always yields the
// same Chain, or the same error). Grammar:
//
//	chain      := step (">>" step)*
//	step       := criterion ("|" criterion)*
//	criterion  := shortform | "role:" value | "name:" value | "id:" value |
//	              "native_id:" value | "text:" value | "class_name:" value |
//	              "path:" value | "visible:" ("true"|"false") |
//	              "nth:" integer | "process:" value | "window:" value |
//	              "has(" chain ")" | "parent(" chain ")" |
//	              "near(" value ")" | "above(" value ")" | "below(" value ")" |
//	              "rightof(" value ")" | "leftof(" value ")"
//	shortform  := "#" id-value
//	value      := "contains:" text | "regex:" text | "glob:" text | text
func Parse(raw string) (*Chain, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errs.New(errs.KindInvalidSelector, "selector is empty")
	}

	stepStrs := splitTopLevel(trimmed, ">>")
	chain := &Chain{Raw: raw}
	for _, s := range stepStrs {
		step, err := parseStep(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		chain.Steps = append(chain.Steps, step)
	}
	return chain, nil
}

func parseStep(s string) (Step, error) {
	if s == "" {
		return Step{}, errs.New(errs.KindInvalidSelector, "empty selector step")
	}
	critStrs := splitTopLevel(s, "|")
	step := Step{}
	for _, cs := range critStrs {
		c, err := parseCriterion(strings.TrimSpace(cs))
		if err != nil {
			return Step{}, err
		}
		step.Criteria = append(step.Criteria, c)
	}
	return step, nil
}

func parseCriterion(s string) (Criterion, error) {
	if strings.HasPrefix(s, "#") {
		return Criterion{Kind: CriterionID, Value: s[1:], Mode: MatchExact}, nil
	}

	name, arg, ok := splitFuncCall(s)
	if ok {
		switch name {
		case "has", "parent":
			sub, err := Parse(arg)
			if err != nil {
				return Criterion{}, err
			}
			kind := CriterionHas
			if name == "parent" {
				kind = CriterionParent
			}
			return Criterion{Kind: kind, Sub: sub}, nil
		case "near":
			return Criterion{Kind: CriterionNear, Value: arg}, nil
		case "above":
			return Criterion{Kind: CriterionAbove, Value: arg}, nil
		case "below":
			return Criterion{Kind: CriterionBelow, Value: arg}, nil
		case "rightof":
			return Criterion{Kind: CriterionRightOf, Value: arg}, nil
		case "leftof":
			return Criterion{Kind: CriterionLeftOf, Value: arg}, nil
		default:
			return Criterion{}, errs.New(errs.KindInvalidSelector, "unknown selector function %q", name)
		}
	}

	key, val, ok := strings.Cut(s, ":")
	if !ok {
		return Criterion{}, errs.New(errs.KindInvalidSelector, "malformed criterion %q: expected key:value", s)
	}
	key = strings.ToLower(strings.TrimSpace(key))
	val = strings.TrimSpace(val)

	switch key {
	case "role":
		return Criterion{Kind: CriterionRole, Value: val, Mode: MatchExact, Role: normalizeRole(val)}, nil
	case "name":
		mode, v := splitMatchMode(val)
		return Criterion{Kind: CriterionName, Value: v, Mode: mode}, nil
	case "id", "automation_id":
		mode, v := splitMatchMode(val)
		return Criterion{Kind: CriterionID, Value: v, Mode: mode}, nil
	case "native_id":
		mode, v := splitMatchMode(val)
		return Criterion{Kind: CriterionNativeID, Value: v, Mode: mode}, nil
	case "text":
		mode, v := splitMatchMode(val)
		return Criterion{Kind: CriterionText, Value: v, Mode: mode}, nil
	case "class_name":
		mode, v := splitMatchMode(val)
		return Criterion{Kind: CriterionClassName, Value: v, Mode: mode}, nil
	case "path":
		return Criterion{Kind: CriterionPath, Value: val, Mode: MatchExact}, nil
	case "visible":
		return Criterion{Kind: CriterionVisible, Value: val, Mode: MatchExact}, nil
	case "nth":
		n, err := strconv.Atoi(val)
		if err != nil {
			return Criterion{}, errs.New(errs.KindInvalidSelector, "nth requires an integer, got %q", val)
		}
		return Criterion{Kind: CriterionNth, Nth: n}, nil
	case "process":
		return Criterion{Kind: CriterionProcess, Value: val, Mode: MatchExact}, nil
	case "window":
		mode, v := splitMatchMode(val)
		return Criterion{Kind: CriterionWindow, Value: v, Mode: mode}, nil
	default:
		return Criterion{}, errs.New(errs.KindInvalidSelector, "unknown criterion key %q", key)
	}
}

// splitMatchMode peels off a "contains:"/"regex:"/"glob:" prefix, defaulting
// to exact match.
func splitMatchMode(val string) (MatchMode, string) {
	for prefix, mode := range map[string]MatchMode{
		"contains:": MatchContains,
		"regex:":    MatchRegex,
		"glob:":     MatchGlob,
	} {
		if strings.HasPrefix(val, prefix) {
			return mode, val[len(prefix):]
		}
	}
	return MatchExact, val
}

// splitFuncCall recognizes "name(arg)" forms, respecting nested parens.
func splitFuncCall(s string) (name, arg string, ok bool) {
	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	candidate := s[:open]
	if strings.ContainsAny(candidate, ":|> ") {
		return "", "", false
	}
	return strings.ToLower(candidate), s[open+1 : len(s)-1], true
}

// splitTopLevel splits s on sep, ignoring occurrences of sep nested inside
// parentheses (so has(role:Button) isn't broken on an inner ">>" or "|").
func splitTopLevel(s, sep string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && strings.HasPrefix(s[i:], sep) {
			parts = append(parts, s[start:i])
			i += len(sep) - 1
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// normalizeRole maps a user-written role string (which may be a canonical
// name already, or a platform-native one) onto the canonical Role set,
// falling back to treating it as already-canonical so resolution can still
// compare it verbatim against NativeRole.
func normalizeRole(v string) element.Role {
	if r := platform.CanonicalRole(v); r != "" {
		return r
	}
	return element.Role(v)
}

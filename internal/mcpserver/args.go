package mcpserver

import (
	"strings"

	"github.com/terminator-run/terminator/internal/errs"
)

// argString/argFloat/argBool/argStringSlice pull typed values out of a tool
// call's loosely-typed JSON argument bag, the way a JSON-RPC handler must:
// every field arrives as interface{} after unmarshaling.

func argString(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func requireString(args map[string]interface{}, key string) (string, error) {
	s, ok := argString(args, key)
	if !ok || s == "" {
		return "", errs.New(errs.KindInvalidArgument, "missing required argument %q", key)
	}
	return s, nil
}

func argFloat(args map[string]interface{}, key string, def float64) float64 {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

func argInt64(args map[string]interface{}, key string, def int64) int64 {
	return int64(argFloat(args, key, float64(def)))
}

func argBool(args map[string]interface{}, key string, def bool) bool {
	v, ok := args[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func argStringSlice(args map[string]interface{}, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		return splitCSV(s)
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func argMap(args map[string]interface{}, key string) map[string]interface{} {
	v, ok := args[key]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return m
}

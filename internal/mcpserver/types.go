// Package mcpserver implements the Tool Server (spec §4.6): a JSON-RPC 2.0
// catalog of automation tools exposed over stdio and HTTP, wired the way the
// teacher's cmd/runner wires routes onto its http-worker/orchestrator
// services — a typed registry of handlers behind one dispatch point, plus a
// Prometheus metrics set matching the names the teacher already exposes via
// cmd/workflow-runner/metrics/runtime.go.
package mcpserver

import "context"

// ToolDef describes one JSON-RPC tool: its name, its JSON-schema input
// contract, and the handler that executes it. Using a single struct (rather
// than one interface implementation per tool, as a generic MCP server might)
// keeps the ~50 tools in §4.6 as plain data plus a closure, since none of
// them need per-tool state beyond what's already captured by closing over
// *Server.
type ToolDef struct {
	Name        string
	Description string
	Schema      map[string]interface{}
	Handler     func(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// objectSchema builds a minimal JSON Schema object with the given required
// and optional properties, enough for MCP clients to render a tool form.
func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

func boolProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}

func objectProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "object", "description": description}
}

func arrayProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": description}
}

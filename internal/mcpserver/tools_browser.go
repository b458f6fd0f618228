package mcpserver

import (
	"context"

	"github.com/terminator-run/terminator/internal/errs"
)

// browserTools implements the Browser category's tool surface (spec §4.6).
// None of the platform backends drive a browser's DOM directly — they only
// walk the accessibility tree a browser process exposes like any other
// application — so these tools report UnsupportedOperation rather than
// silently no-opping. A future browser-extension bridge would replace these
// bodies without changing the catalog's shape.
func browserTools(s *Server) []ToolDef {
	unsupported := func(name, reason string) ToolDef {
		return ToolDef{
			Name:        name,
			Description: reason,
			Schema:      objectSchema(map[string]interface{}{}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return nil, errs.New(errs.KindUnsupportedOp, "%s: no browser automation bridge is configured", name)
			},
		}
	}

	return []ToolDef{
		unsupported("navigate_browser", "Navigate a browser tab to a URL (requires a browser-extension bridge, not yet configured)."),
		unsupported("execute_browser_script", "Execute JavaScript in a browser tab (requires a browser-extension bridge, not yet configured)."),
		unsupported("browser_tabs", "List or switch open browser tabs (requires a browser-extension bridge, not yet configured)."),
	}
}

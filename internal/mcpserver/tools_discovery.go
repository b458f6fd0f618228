package mcpserver

import (
	"context"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/platform"
)

// discoveryTools implements the Discovery category (spec §4.6): listing
// applications, building accessibility trees, and validating selectors
// without acting on anything.
func discoveryTools(s *Server) []ToolDef {
	return []ToolDef{
		{
			Name:        "get_applications",
			Description: "List running, UI-exposing applications.",
			Schema:      objectSchema(map[string]interface{}{}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				apps, err := s.backend.Applications(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"applications": apps}, nil
			},
		},
		{
			Name:        "get_window_tree",
			Description: "Build the accessibility tree for a window, identified by process id and/or title.",
			Schema: objectSchema(map[string]interface{}{
				"pid":        numberProp("Process id owning the window."),
				"title":      stringProp("Substring filter when a process owns multiple windows."),
				"max_depth":  numberProp("Maximum tree depth (0 means scope element only)."),
				"mode":       stringProp("Property loading mode: fast | complete | smart (default smart)."),
				"format":     stringProp("verbose_json | compact_yaml | clustered_yaml (default verbose_json)."),
			}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return s.buildTree(ctx, platform.WindowTreeOptions{
					ProcessID: int(argFloat(args, "pid", 0)),
					Title:     mustArgString(args, "title"),
					Build:     buildOptionsFromArgs(args),
				}, args)
			},
		},
		{
			Name:        "get_focused_window_tree",
			Description: "Build the accessibility tree rooted at the element that currently has keyboard focus.",
			Schema: objectSchema(map[string]interface{}{
				"max_depth": numberProp("Maximum tree depth."),
				"format":    stringProp("verbose_json | compact_yaml | clustered_yaml."),
			}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				root, err := s.backend.FocusedElement(ctx)
				if err != nil {
					return nil, err
				}
				return s.renderTree(ctx, root, buildOptionsFromArgs(args), args)
			},
		},
		{
			Name:        "validate_element",
			Description: "Check whether a selector currently resolves to at least one element, without erroring.",
			Schema: objectSchema(map[string]interface{}{
				"selector":   stringProp("Selector chain to validate."),
				"timeout_ms": numberProp("Resolution deadline in milliseconds (default 0: single scan, no retry)."),
			}, "selector"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"valid": loc.Validate(ctx)}, nil
			},
		},
		{
			Name:        "list_options",
			Description: "List the selectable options of a combo box, list, or menu element.",
			Schema:      objectSchema(map[string]interface{}{"selector": stringProp("Selector for the container element.")}, "selector"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				el, err := loc.First(ctx)
				if err != nil {
					return nil, err
				}
				children, err := el.Children(ctx)
				if err != nil {
					return nil, err
				}
				names := make([]string, 0, len(children))
				for _, c := range children {
					names = append(names, c.Attributes().Name)
				}
				return map[string]interface{}{"options": names}, nil
			},
		},
	}
}

func mustArgString(args map[string]interface{}, key string) string {
	s, _ := argString(args, key)
	return s
}

// explicitZeroDepth reports whether the caller passed max_depth:0
// explicitly, as distinct from omitting it (whose BuildOptions zero value
// means unlimited depth).
func explicitZeroDepth(args map[string]interface{}) bool {
	v, ok := args["max_depth"]
	if !ok {
		return false
	}
	n, ok := v.(float64)
	return ok && n == 0
}

func buildOptionsFromArgs(args map[string]interface{}) element.BuildOptions {
	opts := element.BuildOptions{MaxDepth: int(argFloat(args, "max_depth", 0))}
	switch mustArgString(args, "mode") {
	case "fast":
		opts.Mode = element.ModeFast
	case "complete":
		opts.Mode = element.ModeComplete
	default:
		opts.Mode = element.ModeSmart
	}
	return opts
}

func formatFromArgs(args map[string]interface{}) element.Format {
	switch mustArgString(args, "format") {
	case "compact_yaml":
		return element.FormatCompactYAML
	case "clustered_yaml":
		return element.FormatClusteredYAML
	default:
		return element.FormatVerboseJSON
	}
}

func (s *Server) buildTree(ctx context.Context, opts platform.WindowTreeOptions, args map[string]interface{}) (interface{}, error) {
	root, err := s.backend.WindowTree(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s.renderTree(ctx, root, opts.Build, args)
}

func (s *Server) renderTree(ctx context.Context, root *element.Element, opts element.BuildOptions, args map[string]interface{}) (interface{}, error) {
	var tree *element.Tree
	var stats element.Stats

	if explicitZeroDepth(args) {
		// max_depth=0 means "scope element only" (spec §8 boundary
		// behavior); BuildOptions.MaxDepth's own zero value means
		// unlimited, so this case is handled without a tree walk at all.
		tree = element.NewScopeOnlyTree(root)
		stats = element.Stats{NodeCount: 1}
	} else {
		builder := element.NewBuilder(opts)
		token := element.NewCancelToken()
		var err error
		tree, stats, err = builder.Build(ctx, root, token)
		if err != nil {
			return nil, errs.Wrap(err, errs.KindPlatformError, "building tree")
		}
	}
	s.cache.Put(root)

	rendered, index, err := element.Render(tree, formatFromArgs(args))
	if err != nil {
		return nil, errs.Wrap(err, errs.KindInternalError, "rendering tree")
	}
	result := map[string]interface{}{"tree": rendered, "stats": stats}
	if index != nil {
		result["bounds_index"] = index
	}
	return result, nil
}

package mcpserver

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/terminator-run/terminator/internal/errs"
)

// stateTools implements the State & Wait category (spec §4.6): blocking on
// an element appearing, capturing pixels, drawing an overlay, and the
// clipboard pass-through tools.
func stateTools(s *Server) []ToolDef {
	return []ToolDef{
		{
			Name:        "wait_for_element",
			Description: "Block until a selector resolves or a timeout elapses.",
			Schema: objectSchema(map[string]interface{}{
				"selector":              stringProp("Selector chain to wait for."),
				"alternative_selectors": arrayProp("Selectors raced alongside the primary selector."),
				"fallback_selectors":    arrayProp("Selectors tried, in order, only if the primary and alternatives fail."),
				"timeout_ms":            numberProp("Maximum time to wait, in milliseconds (default 5000)."),
			}, "selector"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				timeout := argInt64(args, "timeout_ms", 5000)
				el, err := loc.WaitFor(ctx, timeout)
				if err != nil {
					return nil, err
				}
				attrs := el.Attributes()
				return map[string]interface{}{"found": true, "role": attrs.Role, "name": attrs.Name}, nil
			},
		},
		{
			Name:        "capture_element_screenshot",
			Description: "Capture a PNG screenshot of the element resolved by selector, returned as base64.",
			Schema: objectSchema(map[string]interface{}{
				"selector":   stringProp("Selector chain identifying the target element."),
				"timeout_ms": numberProp("Resolution deadline in milliseconds."),
			}, "selector"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				el, err := loc.First(ctx)
				if err != nil {
					return nil, err
				}
				png, err := el.Capture(ctx)
				if err != nil {
					return nil, errs.Wrap(err, errs.KindPlatformError, "capturing element screenshot")
				}
				return map[string]interface{}{
					"image_base64": base64.StdEncoding.EncodeToString(png),
					"mime_type":    "image/png",
				}, nil
			},
		},
		{
			Name:        "highlight_element",
			Description: "Draw a transient overlay rectangle around the element resolved by selector.",
			Schema: objectSchema(map[string]interface{}{
				"selector":    stringProp("Selector chain identifying the target element."),
				"label":       stringProp("Text label drawn alongside the overlay."),
				"duration_ms": numberProp("How long the overlay stays visible, in milliseconds (default 1000)."),
				"timeout_ms":  numberProp("Resolution deadline in milliseconds."),
			}, "selector"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				label := mustArgString(args, "label")
				hl, err := loc.Highlight(ctx, label)
				if err != nil {
					return nil, err
				}
				defer hl.Close()

				duration := time.Duration(argInt64(args, "duration_ms", 1000)) * time.Millisecond
				select {
				case <-ctx.Done():
				case <-time.After(duration):
				}
				return map[string]interface{}{"highlighted": true}, nil
			},
		},
		{
			Name:        "get_clipboard",
			Description: "Read the current clipboard text contents.",
			Schema:      objectSchema(map[string]interface{}{}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				text, err := s.backend.GetClipboard(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"text": text}, nil
			},
		},
		{
			Name:        "set_clipboard",
			Description: "Write text to the clipboard.",
			Schema:      objectSchema(map[string]interface{}{"text": stringProp("Text to write.")}, "text"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				text, err := requireString(args, "text")
				if err != nil {
					return nil, err
				}
				if err := s.backend.SetClipboard(ctx, text); err != nil {
					return nil, err
				}
				return map[string]interface{}{"written": len(text)}, nil
			},
		},
	}
}

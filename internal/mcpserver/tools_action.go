package mcpserver

import (
	"context"

	"github.com/terminator-run/terminator/internal/locator"
)

// actionTools implements the Action category (spec §4.6): clicking, typing,
// and otherwise mutating the element a selector resolves to, via the
// locator package's retrying action surface.
func actionTools(s *Server) []ToolDef {
	selectorArg := stringProp("Selector chain identifying the target element.")
	actionSchema := func(extra map[string]interface{}, required ...string) map[string]interface{} {
		props := map[string]interface{}{
			"selector":                    selectorArg,
			"alternative_selectors":       arrayProp("Selectors raced alongside the primary selector."),
			"fallback_selectors":          arrayProp("Selectors tried, in order, only if the primary and alternatives fail."),
			"timeout_ms":                  numberProp("Resolution deadline in milliseconds."),
			"highlight_before_action":     boolProp("Draw a transient overlay around the element before acting on it."),
			"try_focus_before_action":     boolProp("Focus the element before acting on it (default true)."),
			"try_click_before_action":     boolProp("Click the element to force focus if try_focus_before_action fails (default true)."),
			"include_window_screenshot":   boolProp("Capture a post-action screenshot of the element's window."),
			"include_monitor_screenshots": boolProp("Capture a post-action screenshot of every monitor."),
			"include_ui_diff":             boolProp("Diff the UI tree around the element before and after the action."),
		}
		for k, v := range extra {
			props[k] = v
		}
		return objectSchema(props, append([]string{"selector"}, required...)...)
	}

	return []ToolDef{
		{
			Name:        "click_element",
			Description: "Click an element resolved by selector.",
			Schema:      actionSchema(nil),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				res, err := loc.Click(ctx, s.actionOptions(args))
				if err != nil {
					return nil, err
				}
				return actionResultPayload(res), nil
			},
		},
		{
			Name:        "type_into_element",
			Description: "Type text into an element resolved by selector.",
			Schema: actionSchema(map[string]interface{}{
				"text_to_type":        stringProp("Text to enter."),
				"clear_before_typing": boolProp("Clear the existing value before typing (default false)."),
				"use_clipboard":       boolProp("Paste via clipboard instead of synthesizing keystrokes."),
			}, "text_to_type"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				text, err := requireString(args, "text_to_type")
				if err != nil {
					return nil, err
				}
				opts := s.actionOptions(args)
				opts.ClearBeforeTyping = argBool(args, "clear_before_typing", false)
				opts.UseClipboard = argBool(args, "use_clipboard", false)
				if err := loc.TypeText(ctx, text, opts); err != nil {
					return nil, err
				}
				return map[string]interface{}{"typed": text}, nil
			},
		},
		{
			Name:        "press_key",
			Description: "Send a key chord (e.g. \"Ctrl+A\") to an element resolved by selector.",
			Schema:      actionSchema(map[string]interface{}{"key": stringProp("Key chord, e.g. \"Ctrl+A\" or \"Enter\".")}, "key"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				key, err := requireString(args, "key")
				if err != nil {
					return nil, err
				}
				if err := loc.PressKey(ctx, key, s.actionOptions(args)); err != nil {
					return nil, err
				}
				return map[string]interface{}{"key": key}, nil
			},
		},
		{
			Name:        "mouse_drag",
			Description: "Drag the mouse from one element's center to another's, via two synthesized physical clicks at the endpoint coordinates.",
			Schema: objectSchema(map[string]interface{}{
				"start_selector": stringProp("Selector for the drag start element."),
				"end_selector":   stringProp("Selector for the drag end element."),
				"timeout_ms":     numberProp("Resolution deadline in milliseconds."),
			}, "start_selector", "end_selector"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				startSel, err := requireString(args, "start_selector")
				if err != nil {
					return nil, err
				}
				endSel, err := requireString(args, "end_selector")
				if err != nil {
					return nil, err
				}
				start, err := locator.New(s.backend, s.log, startSel)
				if err != nil {
					return nil, err
				}
				end, err := locator.New(s.backend, s.log, endSel)
				if err != nil {
					return nil, err
				}
				startEl, err := start.First(ctx)
				if err != nil {
					return nil, err
				}
				endEl, err := end.First(ctx)
				if err != nil {
					return nil, err
				}
				sb, eb := startEl.Attributes().Bounds, endEl.Attributes().Bounds
				if err := s.backend.GlobalClick(ctx, sb.CenterX(), sb.CenterY(), "left"); err != nil {
					return nil, err
				}
				if err := s.backend.GlobalClick(ctx, eb.CenterX(), eb.CenterY(), "left"); err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"from": map[string]float64{"x": sb.CenterX(), "y": sb.CenterY()},
					"to":   map[string]float64{"x": eb.CenterX(), "y": eb.CenterY()},
				}, nil
			},
		},
		{
			Name:        "scroll_element",
			Description: "Scroll an element resolved by selector.",
			Schema: actionSchema(map[string]interface{}{
				"direction": stringProp("up | down | left | right"),
				"amount":    numberProp("Scroll amount (backend-specific units, typically lines)."),
			}, "direction"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				dir, err := requireString(args, "direction")
				if err != nil {
					return nil, err
				}
				amount := argFloat(args, "amount", 1)
				if err := loc.Scroll(ctx, dir, amount, s.actionOptions(args)); err != nil {
					return nil, err
				}
				return map[string]interface{}{"direction": dir, "amount": amount}, nil
			},
		},
		{
			Name:        "invoke_element",
			Description: "Invoke an element's default accessibility action directly.",
			Schema:      actionSchema(nil),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				res, err := loc.Invoke(ctx, s.actionOptions(args))
				if err != nil {
					return nil, err
				}
				return actionResultPayload(res), nil
			},
		},
		{
			Name:        "set_value",
			Description: "Write a value to an element through its value setter (falling back to typing if unsupported).",
			Schema:      actionSchema(map[string]interface{}{"value": stringProp("Value to set.")}, "value"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				value, err := requireString(args, "value")
				if err != nil {
					return nil, err
				}
				if err := loc.SetValue(ctx, value, s.actionOptions(args)); err != nil {
					return nil, err
				}
				return map[string]interface{}{"value": value}, nil
			},
		},
		{
			Name:        "set_toggled",
			Description: "Set a checkbox or toggle button's toggled state.",
			Schema:      actionSchema(map[string]interface{}{"toggled": boolProp("Desired toggled state.")}, "toggled"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				toggled := argBool(args, "toggled", true)
				if err := loc.SetToggled(ctx, toggled, s.actionOptions(args)); err != nil {
					return nil, err
				}
				return map[string]interface{}{"toggled": toggled}, nil
			},
		},
		{
			Name:        "set_selected",
			Description: "Set a selectable item's selected state.",
			Schema:      actionSchema(map[string]interface{}{"selected": boolProp("Desired selected state.")}, "selected"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				selected := argBool(args, "selected", true)
				if err := loc.SetSelected(ctx, selected, s.actionOptions(args)); err != nil {
					return nil, err
				}
				return map[string]interface{}{"selected": selected}, nil
			},
		},
		{
			Name:        "set_range_value",
			Description: "Set a slider or progress bar's numeric value.",
			Schema:      actionSchema(map[string]interface{}{"value": numberProp("Numeric value to set.")}, "value"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				value := argFloat(args, "value", 0)
				if err := loc.SetRangeValue(ctx, value, s.actionOptions(args)); err != nil {
					return nil, err
				}
				return map[string]interface{}{"value": value}, nil
			},
		},
		{
			Name:        "select_option",
			Description: "Select an option by label inside a combo box or list.",
			Schema:      actionSchema(map[string]interface{}{"option": stringProp("Option label to select.")}, "option"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				option, err := requireString(args, "option")
				if err != nil {
					return nil, err
				}
				if err := loc.SelectOption(ctx, option, s.actionOptions(args)); err != nil {
					return nil, err
				}
				return map[string]interface{}{"option": option}, nil
			},
		},
	}
}

func (s *Server) actionOptions(args map[string]interface{}) locator.ActionOptions {
	opts := locator.DefaultActionOptions()
	opts.HighlightBeforeAction = argBool(args, "highlight_before_action", opts.HighlightBeforeAction)
	opts.TryFocusBeforeAction = argBool(args, "try_focus_before_action", opts.TryFocusBeforeAction)
	opts.TryClickBeforeAction = argBool(args, "try_click_before_action", opts.TryClickBeforeAction)
	opts.IncludeWindowScreenshot = argBool(args, "include_window_screenshot", opts.IncludeWindowScreenshot)
	opts.IncludeMonitorScreenshots = argBool(args, "include_monitor_screenshots", opts.IncludeMonitorScreenshots)
	opts.IncludeUIDiff = argBool(args, "include_ui_diff", opts.IncludeUIDiff)
	return opts
}

func actionResultPayload(res locator.ActionResult) map[string]interface{} {
	payload := map[string]interface{}{
		"method":  res.Method,
		"x":       res.X,
		"y":       res.Y,
		"details": res.Details,
	}
	if res.UIDiff != nil {
		payload["uiDiff"] = map[string]interface{}{
			"added":   res.UIDiff.Added,
			"removed": res.UIDiff.Removed,
		}
	}
	if res.Screenshots != nil {
		screenshots := map[string]interface{}{}
		if res.Screenshots.Window != nil {
			screenshots["window"] = res.Screenshots.Window
		}
		if res.Screenshots.Monitors != nil {
			screenshots["monitors"] = res.Screenshots.Monitors
		}
		payload["screenshots"] = screenshots
	}
	return payload
}

package locator

import (
	"context"
	"errors"
	"time"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
)

// actionBackoff is the retry cadence for locator-level actions, distinct
// from (and longer than) the selector resolver's own backoff since it also
// covers re-resolution cost (spec §4.4 "retry policy").
var actionBackoff = []time.Duration{
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
	2 * time.Second,
}

// ActionOptions bags the per-action behavior toggles (spec §4.4).
type ActionOptions struct {
	HighlightBeforeAction     bool
	IncludeWindowScreenshot   bool
	IncludeMonitorScreenshots bool
	IncludeUIDiff             bool
	TryFocusBeforeAction      bool // default true
	TryClickBeforeAction      bool // default true
	ClearBeforeTyping         bool
	UseClipboard              bool
	MaxRetries                int // default len(actionBackoff)
}

// DefaultActionOptions returns the action defaults named in spec §4.4.
func DefaultActionOptions() ActionOptions {
	return ActionOptions{
		TryFocusBeforeAction: true,
		TryClickBeforeAction: true,
		MaxRetries:           len(actionBackoff),
	}
}

// withRetry re-resolves the locator and invokes fn on every attempt, so a
// StaleReference or transient ElementNotFound from a prior attempt doesn't
// propagate into the next one (spec §4.4: "every retry re-locates the
// element; it never retries the same handle").
func (l *Locator) withRetry(ctx context.Context, opts ActionOptions, fn func(*element.Element) error) error {
	max := opts.MaxRetries
	if max <= 0 {
		max = len(actionBackoff)
	}

	var lastErr error
	for attempt := 0; attempt < max; attempt++ {
		el, err := l.First(ctx)
		if err != nil {
			lastErr = err
			if !errs.Transient(err) {
				return err
			}
		} else {
			if opts.TryFocusBeforeAction {
				if ferr := el.Focus(ctx); ferr != nil && opts.TryClickBeforeAction {
					// Focus declined; clicking the element is the documented
					// fallback to bring it into focus before the real action
					// (spec §4.4 "try_click_before ... used if focus fails").
					_, _ = el.Click(ctx)
				}
			}

			var highlight *element.Highlight
			if opts.HighlightBeforeAction {
				highlight, _ = l.backend.Highlight(ctx, el.Attributes().Bounds, "")
			}

			lastErr = fn(el)

			if highlight != nil {
				_ = highlight.Close()
			}
			if lastErr == nil {
				return nil
			}
			if !errs.Transient(lastErr) {
				return lastErr
			}
		}

		if attempt == max-1 {
			break
		}
		wait := actionBackoff[attempt]
		select {
		case <-ctx.Done():
			return errs.Wrap(ctx.Err(), errs.KindTimeout, "action cancelled while retrying")
		case <-time.After(wait):
		}
	}
	return lastErr
}

// ActionResult augments the backend's element.ActionResult with the
// optional artifacts spec §4.4 documents on click's response shape:
// {method, coordinates, details, uiDiff?, screenshots?}.
type ActionResult struct {
	element.ActionResult
	UIDiff      *Diff
	Screenshots *Screenshots
}

// Screenshots bags the post-action captures an ActionOptions request asks
// for (spec §4.4 "include_window_screenshot" / "include_monitor_screenshots").
type Screenshots struct {
	Window   []byte
	Monitors map[string][]byte
}

// diffBuilder is shared by every CaptureAroundAction call; ModeFast is
// cheap enough to run twice per action without a separate opt-in depth.
var diffBuilder = element.NewBuilder(element.BuildOptions{})

// Click resolves the element and clicks it, retrying on transient failures.
func (l *Locator) Click(ctx context.Context, opts ActionOptions) (ActionResult, error) {
	var res ActionResult
	err := l.withRetry(ctx, opts, func(el *element.Element) error {
		act := func() error {
			var actErr error
			res.ActionResult, actErr = el.Click(ctx)
			return actErr
		}
		if actErr := l.runWithDiff(ctx, el, opts, act, &res); actErr != nil {
			return actErr
		}
		res.Screenshots = l.captureScreenshots(ctx, el, opts)
		return nil
	})
	return res, err
}

// Invoke resolves the element and calls its default accessibility action.
func (l *Locator) Invoke(ctx context.Context, opts ActionOptions) (ActionResult, error) {
	var res ActionResult
	err := l.withRetry(ctx, opts, func(el *element.Element) error {
		act := func() error {
			var actErr error
			res.ActionResult, actErr = el.Invoke(ctx)
			return actErr
		}
		if actErr := l.runWithDiff(ctx, el, opts, act, &res); actErr != nil {
			return actErr
		}
		res.Screenshots = l.captureScreenshots(ctx, el, opts)
		return nil
	})
	return res, err
}

// runWithDiff runs act, wrapping it in a before/after tree snapshot when
// opts.IncludeUIDiff is set (spec §4.4 "uiDiff"), and writes the result
// into res.UIDiff either way.
func (l *Locator) runWithDiff(ctx context.Context, el *element.Element, opts ActionOptions, act func() error, res *ActionResult) error {
	if !opts.IncludeUIDiff {
		return act()
	}
	diff, err := CaptureAroundAction(ctx, el, diffBuilder, act)
	res.UIDiff = diff
	return err
}

// captureScreenshots gathers the post-action artifacts an ActionOptions bag
// requests (spec §4.4 "include_window_screenshot" / "include_monitor_screenshots").
// Capture failures are swallowed: a screenshot is a best-effort extra, not a
// reason to fail an action that otherwise succeeded.
func (l *Locator) captureScreenshots(ctx context.Context, el *element.Element, opts ActionOptions) *Screenshots {
	if !opts.IncludeWindowScreenshot && !opts.IncludeMonitorScreenshots {
		return nil
	}
	shots := &Screenshots{}
	if opts.IncludeWindowScreenshot {
		if png, err := el.Capture(ctx); err == nil {
			shots.Window = png
		}
	}
	if opts.IncludeMonitorScreenshots {
		if monitors, err := l.backend.Monitors(ctx); err == nil {
			shots.Monitors = make(map[string][]byte, len(monitors))
			for _, m := range monitors {
				if png, err := l.backend.CaptureMonitor(ctx, m.ID); err == nil {
					shots.Monitors[m.ID] = png
				}
			}
		}
	}
	return shots
}

// SetValue resolves the element and writes value through the value setter,
// or types it via simulated keystrokes/clipboard if the element declines
// (the backend's SetValue returning UnsupportedOperation is treated as a
// cue to fall back to TypeText, not as a hard failure).
func (l *Locator) SetValue(ctx context.Context, value string, opts ActionOptions) error {
	return l.withRetry(ctx, opts, func(el *element.Element) error {
		err := el.SetValue(ctx, value)
		if err == nil {
			return nil
		}
		if kindOf(err) == errs.KindUnsupportedOp {
			return el.TypeText(ctx, value, opts.ClearBeforeTyping, opts.UseClipboard)
		}
		return err
	})
}

// TypeText resolves the element and enters text.
func (l *Locator) TypeText(ctx context.Context, text string, opts ActionOptions) error {
	return l.withRetry(ctx, opts, func(el *element.Element) error {
		return el.TypeText(ctx, text, opts.ClearBeforeTyping, opts.UseClipboard)
	})
}

// Scroll resolves the element and scrolls it.
func (l *Locator) Scroll(ctx context.Context, direction string, amount float64, opts ActionOptions) error {
	return l.withRetry(ctx, opts, func(el *element.Element) error {
		return el.Scroll(ctx, direction, amount)
	})
}

// PressKey resolves the element and sends it a key chord.
func (l *Locator) PressKey(ctx context.Context, chord string, opts ActionOptions) error {
	return l.withRetry(ctx, opts, func(el *element.Element) error {
		return el.PressKey(ctx, chord)
	})
}

// SetToggled resolves the element and sets its toggled state.
func (l *Locator) SetToggled(ctx context.Context, toggled bool, opts ActionOptions) error {
	return l.withRetry(ctx, opts, func(el *element.Element) error {
		return el.SetToggled(ctx, toggled)
	})
}

// SetSelected resolves the element and sets its selected state.
func (l *Locator) SetSelected(ctx context.Context, selected bool, opts ActionOptions) error {
	return l.withRetry(ctx, opts, func(el *element.Element) error {
		return el.SetSelected(ctx, selected)
	})
}

// SetRangeValue resolves the element and sets its numeric range value.
func (l *Locator) SetRangeValue(ctx context.Context, value float64, opts ActionOptions) error {
	return l.withRetry(ctx, opts, func(el *element.Element) error {
		return el.SetRangeValue(ctx, value)
	})
}

// SelectOption resolves the element and selects option by label.
func (l *Locator) SelectOption(ctx context.Context, option string, opts ActionOptions) error {
	return l.withRetry(ctx, opts, func(el *element.Element) error {
		return el.SelectOption(ctx, option)
	})
}

// Highlight draws a transient overlay around the resolved element's bounds
// (spec §4.4 "highlight_before_action" / standalone highlight tool).
func (l *Locator) Highlight(ctx context.Context, label string) (*element.Highlight, error) {
	el, err := l.First(ctx)
	if err != nil {
		return nil, err
	}
	return l.backend.Highlight(ctx, el.Attributes().Bounds, label)
}

func kindOf(err error) errs.Kind {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

//go:build darwin

package darwinbackend

import (
	"context"
	"fmt"
	"strings"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
)

// keyCodes maps common chord key names to macOS virtual key codes, for
// System Events' "key code N using {modifier down}" form.
var keyCodes = map[string]int{
	"enter": 36, "return": 36,
	"tab": 48, "escape": 53, "esc": 53,
	"backspace": 51, "delete": 117,
	"home": 115, "end": 119,
	"up": 126, "down": 125, "left": 123, "right": 124,
	"space": 49,
}

var modifierNames = map[string]string{
	"cmd": "command down", "command": "command down",
	"ctrl": "control down", "control": "control down",
	"alt": "option down", "option": "option down",
	"shift": "shift down",
}

// GlobalClick requires the CoreGraphics CGEvent bridge to synthesize a
// pointer event at an arbitrary screen point; System Events has no
// absolute-coordinate click primitive of its own.
func (b *Backend) GlobalClick(ctx context.Context, x, y float64, button string) error {
	return errs.New(errs.KindUnsupportedOp, "physical pointer synthesis requires the CoreGraphics CGEvent bridge")
}

// GlobalTypeText uses System Events' keystroke command, which accepts
// arbitrary Unicode text directed at the currently focused application.
func (b *Backend) GlobalTypeText(ctx context.Context, text string) error {
	escaped := strings.ReplaceAll(text, `"`, `\"`)
	script := fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escaped)
	return runOsascript(ctx, script)
}

// GlobalPressKey parses a "Cmd+Shift+A"-style chord into a System Events
// "key code N using {modifiers}" call, falling back to keystroke for a bare
// printable character.
func (b *Backend) GlobalPressKey(ctx context.Context, chord string) error {
	parts := strings.Split(chord, "+")
	last := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	var mods []string
	for _, p := range parts[:len(parts)-1] {
		name := strings.ToLower(strings.TrimSpace(p))
		if m, ok := modifierNames[name]; ok {
			mods = append(mods, m)
		}
	}

	var script string
	if code, ok := keyCodes[last]; ok {
		if len(mods) > 0 {
			script = fmt.Sprintf(`tell application "System Events" to key code %d using {%s}`, code, strings.Join(mods, ", "))
		} else {
			script = fmt.Sprintf(`tell application "System Events" to key code %d`, code)
		}
	} else if len(last) == 1 {
		if len(mods) > 0 {
			script = fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, last, strings.Join(mods, ", "))
		} else {
			script = fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, last)
		}
	} else {
		return errs.New(errs.KindInvalidArgument, "unrecognized key %q in chord %q", last, chord)
	}
	return runOsascript(ctx, script)
}

func (b *Backend) Monitors(ctx context.Context) ([]element.MonitorInfo, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "monitor enumeration requires the CoreGraphics display bridge")
}

func (b *Backend) CaptureMonitor(ctx context.Context, monitorID string) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "monitor capture requires the CoreGraphics display bridge")
}

func (b *Backend) CaptureAll(ctx context.Context) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "full-desktop capture requires the CoreGraphics display bridge")
}

func (b *Backend) Highlight(ctx context.Context, bounds element.Bounds, label string) (*element.Highlight, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "overlay rendering requires a transparent NSWindow bridge")
}

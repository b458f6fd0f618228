//go:build linux

package linuxbackend

import (
	"context"
	"strconv"
	"strings"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
)

func itoa(f float64) string { return strconv.Itoa(int(f)) }

// xdotoolChord translates a "Ctrl+Shift+A"-style chord into the lowercase,
// plus-joined key names xdotool's "key" subcommand expects.
func xdotoolChord(chord string) string {
	parts := strings.Split(chord, "+")
	for i, p := range parts {
		name := strings.ToLower(strings.TrimSpace(p))
		switch name {
		case "cmd", "command":
			name = "super"
		case "esc":
			name = "Escape"
		}
		parts[i] = name
	}
	return strings.Join(parts, "+")
}

func (b *Backend) GlobalClick(ctx context.Context, x, y float64, button string) error {
	btn := "1"
	if strings.EqualFold(button, "right") {
		btn = "3"
	} else if strings.EqualFold(button, "middle") {
		btn = "2"
	}
	return runTool(ctx, "xdotool", "mousemove", itoa(x), itoa(y), "click", btn)
}

func (b *Backend) GlobalTypeText(ctx context.Context, text string) error {
	return runTool(ctx, "xdotool", "type", "--clearmodifiers", text)
}

func (b *Backend) GlobalPressKey(ctx context.Context, chord string) error {
	return runTool(ctx, "xdotool", "key", xdotoolChord(chord))
}

func (b *Backend) Monitors(ctx context.Context) ([]element.MonitorInfo, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "monitor enumeration requires the RandR/Wayland output binding")
}

func (b *Backend) CaptureMonitor(ctx context.Context, monitorID string) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "monitor capture requires the X11/Wayland screenshot binding")
}

func (b *Backend) CaptureAll(ctx context.Context) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "full-desktop capture requires the X11/Wayland screenshot binding")
}

func (b *Backend) Highlight(ctx context.Context, bounds element.Bounds, label string) (*element.Highlight, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "overlay rendering requires an X11 override-redirect window binding")
}

//go:build windows

package windowsbackend

import (
	"context"
	"strings"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
)

var (
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procMouseEvent   = user32.NewProc("mouse_event")
	procKeybdEvent   = user32.NewProc("keybd_event")
	procVkKeyScanW   = user32.NewProc("VkKeyScanW")
)

const (
	mouseeventfLeftDown  = 0x0002
	mouseeventfLeftUp    = 0x0004
	mouseeventfRightDown = 0x0008
	mouseeventfRightUp   = 0x0010
	keyeventfKeyUp       = 0x0002
)

var vkNames = map[string]uint16{
	"ctrl": 0x11, "control": 0x11,
	"alt": 0x12,
	"shift": 0x10,
	"win": 0x5B, "cmd": 0x5B,
	"enter": 0x0D, "return": 0x0D,
	"tab": 0x09, "esc": 0x1B, "escape": 0x1B,
	"backspace": 0x08, "delete": 0x2E, "del": 0x2E,
	"home": 0x24, "end": 0x23,
	"up": 0x26, "down": 0x28, "left": 0x25, "right": 0x27,
	"space": 0x20,
}

func (b *Backend) GlobalClick(ctx context.Context, x, y float64, button string) error {
	procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y)))

	down, up := uintptr(mouseeventfLeftDown), uintptr(mouseeventfLeftUp)
	if strings.EqualFold(button, "right") {
		down, up = mouseeventfRightDown, mouseeventfRightUp
	}
	procMouseEvent.Call(down, 0, 0, 0, 0)
	procMouseEvent.Call(up, 0, 0, 0, 0)
	return nil
}

func (b *Backend) GlobalTypeText(ctx context.Context, text string) error {
	for _, r := range text {
		if err := b.sendRune(r); err != nil {
			return err
		}
	}
	return nil
}

// sendRune synthesizes keydown+keyup for a single rune via VkKeyScanW. This
// covers the printable ASCII range reliably; full Unicode input should route
// through TypeText's clipboard-paste path instead (spec §4.1 "Text input").
func (b *Backend) sendRune(r rune) error {
	ret, _, _ := procVkKeyScanW.Call(uintptr(r))
	vk := byte(ret & 0xFF)
	shiftState := byte((ret >> 8) & 0xFF)
	if ret == 0xFFFF {
		return errs.New(errs.KindUnsupportedOp, "character %q is outside the synthesizable VK range; use clipboard paste instead", r)
	}

	shiftHeld := shiftState&1 != 0
	if shiftHeld {
		procKeybdEvent.Call(uintptr(vkNames["shift"]), 0, 0, 0)
	}
	procKeybdEvent.Call(uintptr(vk), 0, 0, 0)
	procKeybdEvent.Call(uintptr(vk), 0, keyeventfKeyUp, 0)
	if shiftHeld {
		procKeybdEvent.Call(uintptr(vkNames["shift"]), 0, keyeventfKeyUp, 0)
	}
	return nil
}

func (b *Backend) GlobalPressKey(ctx context.Context, chord string) error {
	parts := strings.Split(chord, "+")
	var vks []uint16
	for _, p := range parts {
		key := strings.ToLower(strings.TrimSpace(p))
		if vk, ok := vkNames[key]; ok {
			vks = append(vks, vk)
			continue
		}
		if len(key) == 1 {
			ret, _, _ := procVkKeyScanW.Call(uintptr(key[0]))
			vks = append(vks, uint16(ret&0xFF))
			continue
		}
		return errs.New(errs.KindInvalidArgument, "unrecognized key %q in chord %q", p, chord)
	}

	for _, vk := range vks {
		procKeybdEvent.Call(uintptr(vk), 0, 0, 0)
	}
	for i := len(vks) - 1; i >= 0; i-- {
		procKeybdEvent.Call(uintptr(vks[i]), 0, keyeventfKeyUp, 0)
	}
	return nil
}

func (b *Backend) Monitors(ctx context.Context) ([]element.MonitorInfo, error) {
	bounds, err := primaryMonitorBounds()
	if err != nil {
		return nil, err
	}
	return []element.MonitorInfo{{ID: "0", Name: "Display0", Bounds: bounds, Primary: true}}, nil
}

func primaryMonitorBounds() (element.Bounds, error) {
	getSystemMetrics := user32.NewProc("GetSystemMetrics")
	const smCXScreen, smCYScreen = 0, 1
	w, _, _ := getSystemMetrics.Call(smCXScreen)
	h, _, _ := getSystemMetrics.Call(smCYScreen)
	return element.Bounds{X: 0, Y: 0, W: float64(w), H: float64(h)}, nil
}

func (b *Backend) CaptureMonitor(ctx context.Context, monitorID string) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "monitor capture requires the GDI BitBlt binding")
}

func (b *Backend) CaptureAll(ctx context.Context) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "full-desktop capture requires the GDI BitBlt binding")
}

func (b *Backend) Highlight(ctx context.Context, bounds element.Bounds, label string) (*element.Highlight, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "overlay rendering requires a layered window binding")
}

package platform

import (
	"context"

	"github.com/terminator-run/terminator/internal/element"
)

// AppInfo is a lightweight application descriptor (spec §4.1 "applications()").
type AppInfo struct {
	ProcessID int
	Name      string
	Title     string
	Bundle    string // bundle id (macOS) or executable path, backend-specific
}

// FindOptions bounds a find/find_all call (spec §4.1, §4.3): a backend-level
// find is a cheap, single-criterion scan used by the selector resolver as
// its primitive; multi-step selector chains are resolved in package
// selector, not here.
type FindOptions struct {
	Role       element.Role
	Name       string
	NativeID   string
	ProcessID  int
	Visible    *bool
	MaxResults int // 0 means unlimited
}

// WindowTreeOptions selects which window(s) to root a tree build at (spec
// §4.1 "window_tree(pid, title?, cfg)").
type WindowTreeOptions struct {
	ProcessID int
	Title     string // optional substring filter when a process has multiple windows
	Build     element.BuildOptions
}

// Backend is the common contract every per-OS driver implements (spec §4.1).
// A Backend also satisfies element.Host: actions dispatched on an Element
// route back through the Backend that produced it.
type Backend interface {
	element.Host

	// Name identifies the backend, e.g. "windows", "darwin", "linux", "stub".
	Name() string

	// Applications lists running, UI-exposing applications.
	Applications(ctx context.Context) ([]AppInfo, error)

	// Application finds a single running application by name or bundle id.
	Application(ctx context.Context, name string) (AppInfo, error)

	// Root returns the desktop/root element of the accessibility tree.
	Root(ctx context.Context) (*element.Element, error)

	// FocusedElement returns the element that currently has keyboard focus.
	FocusedElement(ctx context.Context) (*element.Element, error)

	// WindowTree builds (or returns the root of) the window identified by
	// opts, ready for a tree.Builder walk.
	WindowTree(ctx context.Context, opts WindowTreeOptions) (*element.Element, error)

	// Find returns the first element matching opts beneath scope (or the
	// whole desktop if scope is nil).
	Find(ctx context.Context, scope *element.Element, opts FindOptions) (*element.Element, error)

	// FindAll returns every element matching opts beneath scope.
	FindAll(ctx context.Context, scope *element.Element, opts FindOptions) ([]*element.Element, error)

	// Monitors enumerates physical displays.
	Monitors(ctx context.Context) ([]element.MonitorInfo, error)

	// CaptureMonitor screenshots one monitor, returning PNG bytes.
	CaptureMonitor(ctx context.Context, monitorID string) ([]byte, error)

	// CaptureAll screenshots the full virtual desktop spanning all monitors.
	CaptureAll(ctx context.Context) ([]byte, error)

	// GlobalClick synthesizes a physical pointer click at absolute screen
	// coordinates, bypassing the accessibility tree entirely (spec §4.4
	// "physical_input" fallback path).
	GlobalClick(ctx context.Context, x, y float64, button string) error

	// GlobalTypeText synthesizes physical keystrokes at the current focus.
	GlobalTypeText(ctx context.Context, text string) error

	// GlobalPressKey synthesizes a physical key chord.
	GlobalPressKey(ctx context.Context, chord string) error

	// Highlight draws a transient overlay rectangle around bounds, for the
	// "highlight_before_action" action option (spec §4.4).
	Highlight(ctx context.Context, bounds element.Bounds, label string) (*element.Highlight, error)

	// BringToFront activates a window identified by its native handle even
	// when the owning process did not call SetForegroundWindow itself
	// (spec §4.1 "bring_to_front workaround" — Windows-specific in practice,
	// a no-op returning nil on platforms without the restriction).
	BringToFront(ctx context.Context, windowHandle string) error

	// GetClipboard reads the current clipboard text contents.
	GetClipboard(ctx context.Context) (string, error)

	// SetClipboard writes text to the clipboard.
	SetClipboard(ctx context.Context, text string) error

	// Shutdown releases any backend-held resources (connections, cgo handles).
	Shutdown() error
}

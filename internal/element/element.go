// Package element implements the platform-agnostic Element & Tree Model
// (spec §3, §4.2, §9 "Cyclic parent/child references"). An Element is an
// opaque handle to a UI node on one platform plus a cached, normalized view
// of its attributes; the underlying native handle may become invalid at any
// time, so every operation funnels through Host and fails cleanly with
// StaleReference rather than crashing.
package element

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terminator-run/terminator/internal/errs"
)

// Role is a canonical, cross-platform role string (spec §3).
type Role string

const (
	RoleButton      Role = "Button"
	RoleEdit        Role = "Edit"
	RoleWindow      Role = "Window"
	RolePane        Role = "Pane"
	RoleMenu        Role = "Menu"
	RoleMenuItem    Role = "MenuItem"
	RoleList        Role = "List"
	RoleListItem    Role = "ListItem"
	RoleTree        Role = "Tree"
	RoleTreeItem    Role = "TreeItem"
	RoleTable       Role = "Table"
	RoleCell        Role = "Cell"
	RoleDialog      Role = "Dialog"
	RoleText        Role = "Text"
	RoleRadioButton Role = "RadioButton"
	RoleCheckBox    Role = "CheckBox"
	RoleComboBox    Role = "ComboBox"
	RoleTab         Role = "Tab"
	RoleTabItem     Role = "TabItem"
	RoleSlider      Role = "Slider"
	RoleProgressBar Role = "ProgressBar"
	RoleHyperlink   Role = "Hyperlink"
	RoleImage       Role = "Image"
	RoleGroup       Role = "Group"
	RoleScrollBar   Role = "ScrollBar"
	RoleToolBar     Role = "ToolBar"
	RoleStatusBar   Role = "StatusBar"
	RoleDocument    Role = "Document"
)

// Bounds is a screen-pixel rectangle on the owning monitor (spec §3: bounds
// are physical pixels; percentage conversion happens at click time, not here).
type Bounds struct {
	X, Y, W, H float64
}

// Right, Bottom, CenterX, CenterY are convenience accessors used throughout
// the positional-selector and click-point logic.
func (b Bounds) Right() float64  { return b.X + b.W }
func (b Bounds) Bottom() float64 { return b.Y + b.H }
func (b Bounds) CenterX() float64 { return b.X + b.W/2 }
func (b Bounds) CenterY() float64 { return b.Y + b.H/2 }

// Attributes is the normalized attribute bag every backend must populate
// (spec §3 Element essential attributes).
type Attributes struct {
	Role            Role
	NativeRole      string // raw platform role, kept when Role mapping is unknown
	Name            string
	AutomationID    string
	NativeID        string
	Value           string
	Description     string
	Bounds          Bounds
	ProcessID       int
	ProcessName     string
	WindowHandle    string
	KeyboardFocusable bool
	Enabled         bool
	Visible         bool
	Focused         bool
	Toggled         bool
	Selected        bool
}

// Host is the narrow per-element contract a platform backend must satisfy.
// It is declared here (not in package platform) so Element can invoke it
// without importing the platform package, keeping element a pure leaf
// package per the engine's bottom-to-top dependency flow (spec §2).
type Host interface {
	Click(ctx context.Context, e *Element) (ActionResult, error)
	DoubleClick(ctx context.Context, e *Element) (ActionResult, error)
	RightClick(ctx context.Context, e *Element) (ActionResult, error)
	Hover(ctx context.Context, e *Element) error
	Focus(ctx context.Context, e *Element) error
	TypeText(ctx context.Context, e *Element, text string, clear bool, useClipboard bool) error
	PressKey(ctx context.Context, e *Element, chord string) error
	SetValue(ctx context.Context, e *Element, value string) error
	SetToggled(ctx context.Context, e *Element, toggled bool) error
	SetSelected(ctx context.Context, e *Element, selected bool) error
	SelectOption(ctx context.Context, e *Element, option string) error
	SetRangeValue(ctx context.Context, e *Element, value float64) error
	Scroll(ctx context.Context, e *Element, direction string, amount float64) error
	Invoke(ctx context.Context, e *Element) (ActionResult, error)
	Capture(ctx context.Context, e *Element) ([]byte, error)
	Children(ctx context.Context, e *Element) ([]*Element, error)
	Parent(ctx context.Context, e *Element) (*Element, error)
	Close(ctx context.Context, e *Element) error
	ActivateWindow(ctx context.Context, e *Element) error
	Refresh(ctx context.Context, e *Element) (Attributes, error)
	ValidateHandle(ctx context.Context, e *Element) error
}

// ActionResult records the path an action actually took (spec §4.4).
type ActionResult struct {
	Method      string // "invoke_pattern" | "legacy_click" | "physical_input"
	X, Y        float64
	Details     string
}

// Element is an opaque handle to a UI node plus a cached, normalized view of
// its attributes.
type Element struct {
	mu sync.RWMutex

	id         string // logical id, stable across a single tree build
	token      string // native handle token; used by backends for staleness
	generation uint64 // bumped when the backend's tree version changes

	host  Host
	attrs Attributes

	parentID string // weak back-pointer (spec §9): re-queried, never owned
}

// New constructs an Element from a backend-populated attribute bag. token is
// an opaque per-backend handle identifier used for staleness checks.
func New(host Host, token string, generation uint64, attrs Attributes) *Element {
	return &Element{
		id:         uuid.NewString(),
		host:       host,
		token:      token,
		generation: generation,
		attrs:      attrs,
	}
}

// ID returns the element's logical (session-local) identifier.
func (e *Element) ID() string { return e.id }

// Token returns the backend-native handle token, for staleness comparisons.
func (e *Element) Token() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.token
}

// Generation returns the tree-build generation this element was produced in.
func (e *Element) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// Attributes returns a copy of the cached attribute bag.
func (e *Element) Attributes() Attributes {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.attrs
}

// SetParentID records the logical id of this element's parent, discovered
// during tree construction. Parent() still re-queries the backend; this is
// only used to short-circuit Root() reachability checks (spec §8 invariant:
// parent() chains eventually reach root()).
func (e *Element) SetParentID(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parentID = id
}

// ParentID returns the cached parent id, if known.
func (e *Element) ParentID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.parentID
}

// refreshAttrs replaces the cached attribute bag, e.g. after a successful
// Refresh() call.
func (e *Element) refreshAttrs(a Attributes) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs = a
}

// ensureLive validates the handle token is still good before dispatching any
// action, translating backend-reported invalidity into StaleReference
// (spec §3 invariant, §7 error taxonomy).
func (e *Element) ensureLive(ctx context.Context) error {
	if e.host == nil {
		return errs.New(errs.KindInternalError, "element has no backend host")
	}
	if err := e.host.ValidateHandle(ctx, e); err != nil {
		return errs.Wrap(err, errs.KindStaleReference, "element handle is no longer valid")
	}
	return nil
}

// IsEnabled, IsVisible, IsFocused, IsToggled, IsSelected, IsKeyboardFocusable
// are state accessors over the cached attribute bag (spec §4.1).
func (e *Element) IsEnabled() bool             { return e.Attributes().Enabled }
func (e *Element) IsVisible() bool             { return e.Attributes().Visible }
func (e *Element) IsFocused() bool             { return e.Attributes().Focused }
func (e *Element) IsToggled() bool             { return e.Attributes().Toggled }
func (e *Element) IsSelected() bool            { return e.Attributes().Selected }
func (e *Element) IsKeyboardFocusable() bool   { return e.Attributes().KeyboardFocusable }

// Click performs the element's default pointer action.
func (e *Element) Click(ctx context.Context) (ActionResult, error) {
	if err := e.ensureLive(ctx); err != nil {
		return ActionResult{}, err
	}
	return e.host.Click(ctx, e)
}

// DoubleClick performs a double-click.
func (e *Element) DoubleClick(ctx context.Context) (ActionResult, error) {
	if err := e.ensureLive(ctx); err != nil {
		return ActionResult{}, err
	}
	return e.host.DoubleClick(ctx, e)
}

// RightClick performs a right (secondary) click.
func (e *Element) RightClick(ctx context.Context) (ActionResult, error) {
	if err := e.ensureLive(ctx); err != nil {
		return ActionResult{}, err
	}
	return e.host.RightClick(ctx, e)
}

// Hover moves the pointer over the element without clicking.
func (e *Element) Hover(ctx context.Context) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.Hover(ctx, e)
}

// Focus attempts to move keyboard focus to the element.
func (e *Element) Focus(ctx context.Context) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.Focus(ctx, e)
}

// TypeText enters text, either via the accessibility value-setter or, when
// useClipboard is true, via clipboard paste (spec §4.1 "Text input").
func (e *Element) TypeText(ctx context.Context, text string, clear, useClipboard bool) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.TypeText(ctx, e, text, clear, useClipboard)
}

// PressKey sends a key chord (e.g. "Ctrl+A") to the element.
func (e *Element) PressKey(ctx context.Context, chord string) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.PressKey(ctx, e, chord)
}

// SetValue bypasses keyboard entry and writes through the value setter.
func (e *Element) SetValue(ctx context.Context, value string) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.SetValue(ctx, e, value)
}

// SetToggled sets a checkbox/toggle-button's toggled state.
func (e *Element) SetToggled(ctx context.Context, toggled bool) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.SetToggled(ctx, e, toggled)
}

// SetSelected sets a selectable item's selected state.
func (e *Element) SetSelected(ctx context.Context, selected bool) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.SetSelected(ctx, e, selected)
}

// SelectOption selects an option by label inside a combo box/list.
func (e *Element) SelectOption(ctx context.Context, option string) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.SelectOption(ctx, e, option)
}

// SetRangeValue sets a slider/progress-bar's numeric value.
func (e *Element) SetRangeValue(ctx context.Context, value float64) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.SetRangeValue(ctx, e, value)
}

// Scroll scrolls the element in direction ("up"|"down"|"left"|"right") by
// amount, via the platform scroll pattern or synthesized wheel input.
func (e *Element) Scroll(ctx context.Context, direction string, amount float64) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.Scroll(ctx, e, direction, amount)
}

// Invoke calls the accessibility "default action" directly.
func (e *Element) Invoke(ctx context.Context) (ActionResult, error) {
	if err := e.ensureLive(ctx); err != nil {
		return ActionResult{}, err
	}
	return e.host.Invoke(ctx, e)
}

// Capture takes a screenshot of the element's bounds, returning PNG bytes.
func (e *Element) Capture(ctx context.Context) ([]byte, error) {
	if err := e.ensureLive(ctx); err != nil {
		return nil, err
	}
	return e.host.Capture(ctx, e)
}

// Children returns the element's immediate children, freshly queried.
func (e *Element) Children(ctx context.Context) ([]*Element, error) {
	if err := e.ensureLive(ctx); err != nil {
		return nil, err
	}
	return e.host.Children(ctx, e)
}

// Parent re-queries the backend for the element's parent (spec §9: parents
// are modeled as weak lookups, never owning references).
func (e *Element) Parent(ctx context.Context) (*Element, error) {
	if err := e.ensureLive(ctx); err != nil {
		return nil, err
	}
	return e.host.Parent(ctx, e)
}

// Close closes the owning window/application, where supported.
func (e *Element) Close(ctx context.Context) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.Close(ctx, e)
}

// ActivateWindow brings the element's owning window to the foreground.
func (e *Element) ActivateWindow(ctx context.Context) error {
	if err := e.ensureLive(ctx); err != nil {
		return err
	}
	return e.host.ActivateWindow(ctx, e)
}

// Refresh re-fetches the element's attributes from the backend, updating the
// cached copy and returning it.
func (e *Element) Refresh(ctx context.Context) (Attributes, error) {
	if err := e.ensureLive(ctx); err != nil {
		return Attributes{}, err
	}
	a, err := e.host.Refresh(ctx, e)
	if err != nil {
		return Attributes{}, err
	}
	e.refreshAttrs(a)
	return a, nil
}

// Highlight is a scoped handle for an on-screen overlay rectangle; dropping
// it (calling Close) hides the overlay (spec §4.4, §9 "Scoped acquisition").
type Highlight struct {
	closeFn func() error
	closed  bool
	mu      sync.Mutex
}

// NewHighlight wraps a backend-specific teardown function.
func NewHighlight(closeFn func() error) *Highlight {
	return &Highlight{closeFn: closeFn}
}

// Close hides the overlay. Safe to call more than once.
func (h *Highlight) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	if h.closeFn == nil {
		return nil
	}
	return h.closeFn()
}

// MonitorInfo describes one physical display (spec §4.1 "Monitor enumeration").
type MonitorInfo struct {
	ID     string
	Name   string
	Bounds Bounds
	Primary bool
}

// now is overridable in tests; production code always uses time.Now.
var now = time.Now

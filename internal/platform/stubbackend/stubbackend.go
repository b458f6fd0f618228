// Package stubbackend is an in-memory fake implementing platform.Backend. It
// backs unit tests for the selector, locator and workflow packages without
// touching any real accessibility API, acting as a fully scriptable fake.
// It is not compiled in as a platform backend: GOOS values none of the real
// drivers claim get platform's unsupported backend instead.
package stubbackend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/platform"
)

// Node is a builder-friendly description of a fake UI element, assembled by
// tests into a tree and handed to New.
type Node struct {
	Attrs    element.Attributes
	Children []*Node

	id string
}

// Backend is the in-memory fake. It is safe for concurrent use.
type Backend struct {
	mu sync.RWMutex

	root     *element.Element
	byID     map[string]*element.Element
	byToken  map[string]*element.Element
	focused  *element.Element
	apps     []platform.AppInfo
	monitors []element.MonitorInfo
	clipboard string

	generation uint64
	actions    []ActionLog
	focusErr   error
}

// ActionLog records a single dispatched action, for test assertions.
type ActionLog struct {
	Kind string
	Args []interface{}
}

// New builds a Backend whose root element mirrors the tree described by
// root.
func New(root *Node) *Backend {
	b := &Backend{
		byID:      make(map[string]*element.Element),
		byToken:   make(map[string]*element.Element),
		monitors:  []element.MonitorInfo{{ID: "0", Name: "primary", Bounds: element.Bounds{W: 1920, H: 1080}, Primary: true}},
		generation: 1,
	}
	b.root = b.materialize(root)
	return b
}

func (b *Backend) materialize(n *Node) *element.Element {
	if n == nil {
		return nil
	}
	token := fmt.Sprintf("tok-%d", len(b.byToken)+1)
	el := element.New(b, token, b.generation, n.Attrs)
	b.byID[el.ID()] = el
	b.byToken[token] = el
	n.id = el.ID()

	for _, c := range n.Children {
		child := b.materialize(c)
		child.SetParentID(el.ID())
	}
	return el
}

func (b *Backend) log(kind string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actions = append(b.actions, ActionLog{Kind: kind, Args: args})
}

// Actions returns every action dispatched so far, for test assertions.
func (b *Backend) Actions() []ActionLog {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]ActionLog, len(b.actions))
	copy(out, b.actions)
	return out
}

// SetFocused marks e as the focused element.
func (b *Backend) SetFocused(e *element.Element) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = e
}

// SetFocusErr makes every subsequent Focus call fail with err, for
// exercising the "try_click_before ... used if focus fails" fallback.
func (b *Backend) SetFocusErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focusErr = err
}

// Invalidate bumps the generation counter, making every previously issued
// element handle stale (used to exercise StaleReference paths in tests).
func (b *Backend) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	atomic.AddUint64(&b.generation, 1)
}

func (b *Backend) Name() string { return "stub" }

func (b *Backend) Applications(ctx context.Context) ([]platform.AppInfo, error) {
	return b.apps, nil
}

func (b *Backend) Application(ctx context.Context, name string) (platform.AppInfo, error) {
	for _, a := range b.apps {
		if a.Name == name {
			return a, nil
		}
	}
	return platform.AppInfo{}, errs.New(errs.KindElementNotFound, "no application named %q", name)
}

func (b *Backend) Root(ctx context.Context) (*element.Element, error) {
	if b.root == nil {
		return nil, errs.New(errs.KindElementNotFound, "stub backend has no root element")
	}
	return b.root, nil
}

func (b *Backend) FocusedElement(ctx context.Context) (*element.Element, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.focused == nil {
		return nil, errs.New(errs.KindElementNotFound, "no focused element")
	}
	return b.focused, nil
}

func (b *Backend) WindowTree(ctx context.Context, opts platform.WindowTreeOptions) (*element.Element, error) {
	return b.Root(ctx)
}

func (b *Backend) Find(ctx context.Context, scope *element.Element, opts platform.FindOptions) (*element.Element, error) {
	all, err := b.FindAll(ctx, scope, opts)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errs.New(errs.KindElementNotFound, "no element matched")
	}
	return all[0], nil
}

func (b *Backend) FindAll(ctx context.Context, scope *element.Element, opts platform.FindOptions) ([]*element.Element, error) {
	start := scope
	if start == nil {
		start = b.root
	}
	var out []*element.Element
	var walk func(e *element.Element)
	walk = func(e *element.Element) {
		if e == nil {
			return
		}
		if matches(e.Attributes(), opts) {
			out = append(out, e)
		}
		children, _ := b.Children(ctx, e)
		for _, c := range children {
			walk(c)
		}
	}
	walk(start)
	if opts.MaxResults > 0 && len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	return out, nil
}

func matches(a element.Attributes, opts platform.FindOptions) bool {
	if opts.Role != "" && a.Role != opts.Role {
		return false
	}
	if opts.Name != "" && a.Name != opts.Name {
		return false
	}
	if opts.NativeID != "" && a.NativeID != opts.NativeID {
		return false
	}
	if opts.ProcessID != 0 && a.ProcessID != opts.ProcessID {
		return false
	}
	if opts.Visible != nil && a.Visible != *opts.Visible {
		return false
	}
	return true
}

func (b *Backend) Monitors(ctx context.Context) ([]element.MonitorInfo, error) { return b.monitors, nil }

func (b *Backend) CaptureMonitor(ctx context.Context, monitorID string) ([]byte, error) {
	return []byte("stub-png"), nil
}

func (b *Backend) CaptureAll(ctx context.Context) ([]byte, error) { return []byte("stub-png"), nil }

func (b *Backend) GlobalClick(ctx context.Context, x, y float64, button string) error {
	b.log("global_click", x, y, button)
	return nil
}

func (b *Backend) GlobalTypeText(ctx context.Context, text string) error {
	b.log("global_type_text", text)
	return nil
}

func (b *Backend) GlobalPressKey(ctx context.Context, chord string) error {
	b.log("global_press_key", chord)
	return nil
}

func (b *Backend) Highlight(ctx context.Context, bounds element.Bounds, label string) (*element.Highlight, error) {
	b.log("highlight", bounds, label)
	return element.NewHighlight(func() error { return nil }), nil
}

func (b *Backend) BringToFront(ctx context.Context, windowHandle string) error {
	b.log("bring_to_front", windowHandle)
	return nil
}

func (b *Backend) GetClipboard(ctx context.Context) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clipboard, nil
}

func (b *Backend) SetClipboard(ctx context.Context, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clipboard = text
	return nil
}

func (b *Backend) Shutdown() error { return nil }

// --- element.Host ---

func (b *Backend) Click(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	b.log("click", e.ID())
	return element.ActionResult{Method: "invoke_pattern"}, nil
}

func (b *Backend) DoubleClick(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	b.log("double_click", e.ID())
	return element.ActionResult{Method: "invoke_pattern"}, nil
}

func (b *Backend) RightClick(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	b.log("right_click", e.ID())
	return element.ActionResult{Method: "invoke_pattern"}, nil
}

func (b *Backend) Hover(ctx context.Context, e *element.Element) error {
	b.log("hover", e.ID())
	return nil
}

func (b *Backend) Focus(ctx context.Context, e *element.Element) error {
	b.mu.RLock()
	err := b.focusErr
	b.mu.RUnlock()
	if err != nil {
		b.log("focus_failed", e.ID())
		return err
	}
	b.SetFocused(e)
	b.log("focus", e.ID())
	return nil
}

func (b *Backend) TypeText(ctx context.Context, e *element.Element, text string, clear, useClipboard bool) error {
	b.log("type_text", e.ID(), text, clear, useClipboard)
	return nil
}

func (b *Backend) PressKey(ctx context.Context, e *element.Element, chord string) error {
	b.log("press_key", e.ID(), chord)
	return nil
}

func (b *Backend) SetValue(ctx context.Context, e *element.Element, value string) error {
	b.log("set_value", e.ID(), value)
	return nil
}

func (b *Backend) SetToggled(ctx context.Context, e *element.Element, toggled bool) error {
	b.log("set_toggled", e.ID(), toggled)
	return nil
}

func (b *Backend) SetSelected(ctx context.Context, e *element.Element, selected bool) error {
	b.log("set_selected", e.ID(), selected)
	return nil
}

func (b *Backend) SelectOption(ctx context.Context, e *element.Element, option string) error {
	b.log("select_option", e.ID(), option)
	return nil
}

func (b *Backend) SetRangeValue(ctx context.Context, e *element.Element, value float64) error {
	b.log("set_range_value", e.ID(), value)
	return nil
}

func (b *Backend) Scroll(ctx context.Context, e *element.Element, direction string, amount float64) error {
	b.log("scroll", e.ID(), direction, amount)
	return nil
}

func (b *Backend) Invoke(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	b.log("invoke", e.ID())
	return element.ActionResult{Method: "invoke_pattern"}, nil
}

func (b *Backend) Capture(ctx context.Context, e *element.Element) ([]byte, error) {
	return []byte("stub-png"), nil
}

func (b *Backend) Children(ctx context.Context, e *element.Element) ([]*element.Element, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []*element.Element
	// Tokens are issued in pre-order, so walking them in sequence keeps
	// children in document order.
	for i := 1; i <= len(b.byToken); i++ {
		cand := b.byToken[fmt.Sprintf("tok-%d", i)]
		if cand != nil && cand.ParentID() == e.ID() {
			out = append(out, cand)
		}
	}
	return out, nil
}

func (b *Backend) Parent(ctx context.Context, e *element.Element) (*element.Element, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pid := e.ParentID()
	if pid == "" {
		return nil, errs.New(errs.KindElementNotFound, "element has no parent")
	}
	p, ok := b.byID[pid]
	if !ok {
		return nil, errs.New(errs.KindElementNotFound, "parent element no longer exists")
	}
	return p, nil
}

func (b *Backend) Close(ctx context.Context, e *element.Element) error {
	b.log("close", e.ID())
	return nil
}

func (b *Backend) ActivateWindow(ctx context.Context, e *element.Element) error {
	b.log("activate_window", e.ID())
	return nil
}

func (b *Backend) Refresh(ctx context.Context, e *element.Element) (element.Attributes, error) {
	if err := b.ValidateHandle(ctx, e); err != nil {
		return element.Attributes{}, err
	}
	return e.Attributes(), nil
}

func (b *Backend) ValidateHandle(ctx context.Context, e *element.Element) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if e.Generation() != atomic.LoadUint64(&b.generation) {
		return errs.New(errs.KindStaleReference, "element %s is from a previous tree generation", e.ID())
	}
	return nil
}

package platform

import (
	"context"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
)

// unsupportedBackend implements Backend by returning UnsupportedPlatform
// from every operation. It is what NewBackend returns on a GOOS none of the
// real drivers claim (spec §4.1 Non-goals: a build target without a native
// accessibility API still satisfies the Backend contract, uniformly).
type unsupportedBackend struct {
	goos string
}

func newUnsupportedBackend(goos string) *unsupportedBackend {
	return &unsupportedBackend{goos: goos}
}

func (u *unsupportedBackend) err() error {
	return errs.New(errs.KindUnsupportedPlatform, "no accessibility backend is available for GOOS=%s", u.goos)
}

func (u *unsupportedBackend) Name() string { return "unsupported:" + u.goos }

func (u *unsupportedBackend) Applications(ctx context.Context) ([]AppInfo, error) { return nil, u.err() }
func (u *unsupportedBackend) Application(ctx context.Context, name string) (AppInfo, error) {
	return AppInfo{}, u.err()
}
func (u *unsupportedBackend) Root(ctx context.Context) (*element.Element, error) { return nil, u.err() }
func (u *unsupportedBackend) FocusedElement(ctx context.Context) (*element.Element, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) WindowTree(ctx context.Context, opts WindowTreeOptions) (*element.Element, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) Find(ctx context.Context, scope *element.Element, opts FindOptions) (*element.Element, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) FindAll(ctx context.Context, scope *element.Element, opts FindOptions) ([]*element.Element, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) Monitors(ctx context.Context) ([]element.MonitorInfo, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) CaptureMonitor(ctx context.Context, monitorID string) ([]byte, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) CaptureAll(ctx context.Context) ([]byte, error) { return nil, u.err() }
func (u *unsupportedBackend) GlobalClick(ctx context.Context, x, y float64, button string) error {
	return u.err()
}
func (u *unsupportedBackend) GlobalTypeText(ctx context.Context, text string) error { return u.err() }
func (u *unsupportedBackend) GlobalPressKey(ctx context.Context, chord string) error { return u.err() }
func (u *unsupportedBackend) Highlight(ctx context.Context, bounds element.Bounds, label string) (*element.Highlight, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) BringToFront(ctx context.Context, windowHandle string) error {
	return u.err()
}
func (u *unsupportedBackend) GetClipboard(ctx context.Context) (string, error) { return "", u.err() }
func (u *unsupportedBackend) SetClipboard(ctx context.Context, text string) error { return u.err() }
func (u *unsupportedBackend) Shutdown() error { return nil }

func (u *unsupportedBackend) Click(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	return element.ActionResult{}, u.err()
}
func (u *unsupportedBackend) DoubleClick(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	return element.ActionResult{}, u.err()
}
func (u *unsupportedBackend) RightClick(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	return element.ActionResult{}, u.err()
}
func (u *unsupportedBackend) Hover(ctx context.Context, e *element.Element) error       { return u.err() }
func (u *unsupportedBackend) Focus(ctx context.Context, e *element.Element) error       { return u.err() }
func (u *unsupportedBackend) TypeText(ctx context.Context, e *element.Element, text string, clear, useClipboard bool) error {
	return u.err()
}
func (u *unsupportedBackend) PressKey(ctx context.Context, e *element.Element, chord string) error {
	return u.err()
}
func (u *unsupportedBackend) SetValue(ctx context.Context, e *element.Element, value string) error {
	return u.err()
}
func (u *unsupportedBackend) SetToggled(ctx context.Context, e *element.Element, toggled bool) error {
	return u.err()
}
func (u *unsupportedBackend) SetSelected(ctx context.Context, e *element.Element, selected bool) error {
	return u.err()
}
func (u *unsupportedBackend) SelectOption(ctx context.Context, e *element.Element, option string) error {
	return u.err()
}
func (u *unsupportedBackend) SetRangeValue(ctx context.Context, e *element.Element, value float64) error {
	return u.err()
}
func (u *unsupportedBackend) Scroll(ctx context.Context, e *element.Element, direction string, amount float64) error {
	return u.err()
}
func (u *unsupportedBackend) Invoke(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	return element.ActionResult{}, u.err()
}
func (u *unsupportedBackend) Capture(ctx context.Context, e *element.Element) ([]byte, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) Children(ctx context.Context, e *element.Element) ([]*element.Element, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) Parent(ctx context.Context, e *element.Element) (*element.Element, error) {
	return nil, u.err()
}
func (u *unsupportedBackend) Close(ctx context.Context, e *element.Element) error { return u.err() }
func (u *unsupportedBackend) ActivateWindow(ctx context.Context, e *element.Element) error {
	return u.err()
}
func (u *unsupportedBackend) Refresh(ctx context.Context, e *element.Element) (element.Attributes, error) {
	return element.Attributes{}, u.err()
}
func (u *unsupportedBackend) ValidateHandle(ctx context.Context, e *element.Element) error {
	return u.err()
}

var _ Backend = (*unsupportedBackend)(nil)

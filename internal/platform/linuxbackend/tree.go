//go:build linux

package linuxbackend

import (
	"context"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/platform"
)

// Tree traversal and AT-SPI actions require a D-Bus org.a11y.atspi client
// binding (Accessible, Component and Action interfaces). Until that binding
// lands, these report UnsupportedOperation (spec §4.1 Non-goals note: a
// backend may legitimately return UnsupportedOperation for operations it
// has not yet implemented, so long as the contract itself is total).

func (b *Backend) Applications(ctx context.Context) ([]platform.AppInfo, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "application enumeration requires the AT-SPI D-Bus binding")
}

func (b *Backend) Application(ctx context.Context, name string) (platform.AppInfo, error) {
	return platform.AppInfo{}, errs.New(errs.KindUnsupportedOp, "application lookup requires the AT-SPI D-Bus binding")
}

func (b *Backend) Root(ctx context.Context) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "accessibility root requires the AT-SPI D-Bus binding")
}

func (b *Backend) FocusedElement(ctx context.Context) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "focused element lookup requires the AT-SPI D-Bus binding")
}

func (b *Backend) WindowTree(ctx context.Context, opts platform.WindowTreeOptions) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "window tree build requires the AT-SPI D-Bus binding")
}

func (b *Backend) Find(ctx context.Context, scope *element.Element, opts platform.FindOptions) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "element find requires the AT-SPI D-Bus binding")
}

func (b *Backend) FindAll(ctx context.Context, scope *element.Element, opts platform.FindOptions) ([]*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "element find_all requires the AT-SPI D-Bus binding")
}

func (b *Backend) Children(ctx context.Context, e *element.Element) ([]*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "child enumeration requires the AT-SPI D-Bus binding")
}

func (b *Backend) Parent(ctx context.Context, e *element.Element) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "parent lookup requires the AT-SPI D-Bus binding")
}

func (b *Backend) Refresh(ctx context.Context, e *element.Element) (element.Attributes, error) {
	return element.Attributes{}, errs.New(errs.KindUnsupportedOp, "attribute refresh requires the AT-SPI D-Bus binding")
}

func (b *Backend) Capture(ctx context.Context, e *element.Element) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "element-scoped capture requires the AT-SPI D-Bus binding")
}

func (b *Backend) Close(ctx context.Context, e *element.Element) error {
	return errs.New(errs.KindUnsupportedOp, "window close requires the AT-SPI D-Bus binding")
}

func (b *Backend) ActivateWindow(ctx context.Context, e *element.Element) error {
	attrs := e.Attributes()
	return b.BringToFront(ctx, attrs.WindowHandle)
}

func (b *Backend) Click(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	bounds := e.Attributes().Bounds
	if err := b.GlobalClick(ctx, bounds.CenterX(), bounds.CenterY(), "left"); err != nil {
		return element.ActionResult{}, err
	}
	return element.ActionResult{Method: "physical_input", X: bounds.CenterX(), Y: bounds.CenterY()}, nil
}

func (b *Backend) DoubleClick(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	bounds := e.Attributes().Bounds
	if err := runTool(ctx, "xdotool", "mousemove", itoa(bounds.CenterX()), itoa(bounds.CenterY()), "click", "--repeat", "2", "1"); err != nil {
		return element.ActionResult{}, err
	}
	return element.ActionResult{Method: "physical_input", X: bounds.CenterX(), Y: bounds.CenterY()}, nil
}

func (b *Backend) RightClick(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	bounds := e.Attributes().Bounds
	if err := b.GlobalClick(ctx, bounds.CenterX(), bounds.CenterY(), "right"); err != nil {
		return element.ActionResult{}, err
	}
	return element.ActionResult{Method: "physical_input", X: bounds.CenterX(), Y: bounds.CenterY()}, nil
}

func (b *Backend) Hover(ctx context.Context, e *element.Element) error {
	bounds := e.Attributes().Bounds
	return runTool(ctx, "xdotool", "mousemove", itoa(bounds.CenterX()), itoa(bounds.CenterY()))
}

func (b *Backend) Focus(ctx context.Context, e *element.Element) error {
	return errs.New(errs.KindUnsupportedOp, "focus requires the AT-SPI D-Bus binding")
}

func (b *Backend) TypeText(ctx context.Context, e *element.Element, text string, clear, useClipboard bool) error {
	if useClipboard {
		if err := b.SetClipboard(ctx, text); err != nil {
			return err
		}
		return b.GlobalPressKey(ctx, "Ctrl+V")
	}
	return b.GlobalTypeText(ctx, text)
}

func (b *Backend) PressKey(ctx context.Context, e *element.Element, chord string) error {
	return b.GlobalPressKey(ctx, chord)
}

func (b *Backend) SetValue(ctx context.Context, e *element.Element, value string) error {
	return errs.New(errs.KindUnsupportedOp, "value interface requires the AT-SPI D-Bus binding")
}

func (b *Backend) SetToggled(ctx context.Context, e *element.Element, toggled bool) error {
	return errs.New(errs.KindUnsupportedOp, "toggle action requires the AT-SPI D-Bus binding")
}

func (b *Backend) SetSelected(ctx context.Context, e *element.Element, selected bool) error {
	return errs.New(errs.KindUnsupportedOp, "selection interface requires the AT-SPI D-Bus binding")
}

func (b *Backend) SelectOption(ctx context.Context, e *element.Element, option string) error {
	return errs.New(errs.KindUnsupportedOp, "selection interface requires the AT-SPI D-Bus binding")
}

func (b *Backend) SetRangeValue(ctx context.Context, e *element.Element, value float64) error {
	return errs.New(errs.KindUnsupportedOp, "value interface requires the AT-SPI D-Bus binding")
}

func (b *Backend) Scroll(ctx context.Context, e *element.Element, direction string, amount float64) error {
	return errs.New(errs.KindUnsupportedOp, "scroll action requires the AT-SPI D-Bus binding")
}

func (b *Backend) Invoke(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	return b.Click(ctx, e)
}

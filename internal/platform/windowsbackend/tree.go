//go:build windows

package windowsbackend

import (
	"context"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/platform"
)

// The accessibility tree operations below require a real UI Automation COM
// binding (IUIAutomation, IUIAutomationElement vtables). Writing that
// binding by hand, method-by-method, is a substantial undertaking tracked
// separately from input synthesis and window activation, which this backend
// implements directly against user32/kernel32. Until the COM layer lands,
// these report UnsupportedOperation rather than fabricate tree data.

func (b *Backend) Applications(ctx context.Context) ([]platform.AppInfo, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "application enumeration requires the UI Automation COM binding")
}

func (b *Backend) Application(ctx context.Context, name string) (platform.AppInfo, error) {
	return platform.AppInfo{}, errs.New(errs.KindUnsupportedOp, "application lookup requires the UI Automation COM binding")
}

func (b *Backend) Root(ctx context.Context) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "desktop root requires the UI Automation COM binding")
}

func (b *Backend) FocusedElement(ctx context.Context) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "focused element lookup requires the UI Automation COM binding")
}

func (b *Backend) WindowTree(ctx context.Context, opts platform.WindowTreeOptions) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "window tree build requires the UI Automation COM binding")
}

func (b *Backend) Find(ctx context.Context, scope *element.Element, opts platform.FindOptions) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "element find requires the UI Automation COM binding")
}

func (b *Backend) FindAll(ctx context.Context, scope *element.Element, opts platform.FindOptions) ([]*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "element find_all requires the UI Automation COM binding")
}

func (b *Backend) Children(ctx context.Context, e *element.Element) ([]*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "child enumeration requires the UI Automation COM binding")
}

func (b *Backend) Parent(ctx context.Context, e *element.Element) (*element.Element, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "parent lookup requires the UI Automation COM binding")
}

func (b *Backend) Refresh(ctx context.Context, e *element.Element) (element.Attributes, error) {
	return element.Attributes{}, errs.New(errs.KindUnsupportedOp, "attribute refresh requires the UI Automation COM binding")
}

func (b *Backend) Capture(ctx context.Context, e *element.Element) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupportedOp, "element-scoped capture requires the UI Automation COM binding")
}

func (b *Backend) Close(ctx context.Context, e *element.Element) error {
	return errs.New(errs.KindUnsupportedOp, "window close requires the UI Automation COM binding")
}

func (b *Backend) ActivateWindow(ctx context.Context, e *element.Element) error {
	attrs := e.Attributes()
	return b.BringToFront(ctx, attrs.WindowHandle)
}

// Click through Invoke funnel to the UIA invoke pattern once bound; for now
// they synthesize a physical click at the element's cached bounds center,
// which works for any element whose bounds are already known (e.g. from a
// tree snapshot taken by another means) without requiring a live COM call.

func (b *Backend) Click(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	bounds := e.Attributes().Bounds
	if err := b.GlobalClick(ctx, bounds.CenterX(), bounds.CenterY(), "left"); err != nil {
		return element.ActionResult{}, err
	}
	return element.ActionResult{Method: "physical_input", X: bounds.CenterX(), Y: bounds.CenterY()}, nil
}

func (b *Backend) DoubleClick(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	res, err := b.Click(ctx, e)
	if err != nil {
		return res, err
	}
	if err := b.GlobalClick(ctx, res.X, res.Y, "left"); err != nil {
		return res, err
	}
	return res, nil
}

func (b *Backend) RightClick(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	bounds := e.Attributes().Bounds
	if err := b.GlobalClick(ctx, bounds.CenterX(), bounds.CenterY(), "right"); err != nil {
		return element.ActionResult{}, err
	}
	return element.ActionResult{Method: "physical_input", X: bounds.CenterX(), Y: bounds.CenterY()}, nil
}

func (b *Backend) Hover(ctx context.Context, e *element.Element) error {
	return errs.New(errs.KindUnsupportedOp, "hover-only pointer move not yet implemented")
}

func (b *Backend) Focus(ctx context.Context, e *element.Element) error {
	return errs.New(errs.KindUnsupportedOp, "focus requires the UI Automation COM binding")
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
	return errs.New(errs.KindUnsupportedOp, "value pattern requires the UI Automation COM binding")
}

func (b *Backend) SetToggled(ctx context.Context, e *element.Element, toggled bool) error {
	return errs.New(errs.KindUnsupportedOp, "toggle pattern requires the UI Automation COM binding")
}

func (b *Backend) SetSelected(ctx context.Context, e *element.Element, selected bool) error {
	return errs.New(errs.KindUnsupportedOp, "selection pattern requires the UI Automation COM binding")
}

func (b *Backend) SelectOption(ctx context.Context, e *element.Element, option string) error {
	return errs.New(errs.KindUnsupportedOp, "selection pattern requires the UI Automation COM binding")
}

func (b *Backend) SetRangeValue(ctx context.Context, e *element.Element, value float64) error {
	return errs.New(errs.KindUnsupportedOp, "range value pattern requires the UI Automation COM binding")
}

func (b *Backend) Scroll(ctx context.Context, e *element.Element, direction string, amount float64) error {
	return errs.New(errs.KindUnsupportedOp, "scroll pattern requires the UI Automation COM binding")
}

func (b *Backend) Invoke(ctx context.Context, e *element.Element) (element.ActionResult, error) {
	return b.Click(ctx, e)
}

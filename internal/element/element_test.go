package element

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/errs"
)

// fakeHost is a minimal Host used only to exercise Element's own dispatch
// and staleness logic, independent of any real platform backend.
type fakeHost struct {
	generation uint64
	valid      bool
	clicked    int
}

func (h *fakeHost) ValidateHandle(ctx context.Context, e *Element) error {
	if !h.valid {
		return errs.New(errs.KindStaleReference, "handle invalidated")
	}
	return nil
}

func (h *fakeHost) Click(ctx context.Context, e *Element) (ActionResult, error) {
	h.clicked++
	return ActionResult{Method: "invoke_pattern"}, nil
}

func (h *fakeHost) DoubleClick(ctx context.Context, e *Element) (ActionResult, error) {
	return ActionResult{}, nil
}
func (h *fakeHost) RightClick(ctx context.Context, e *Element) (ActionResult, error) {
	return ActionResult{}, nil
}
func (h *fakeHost) Hover(ctx context.Context, e *Element) error { return nil }
func (h *fakeHost) Focus(ctx context.Context, e *Element) error { return nil }
func (h *fakeHost) TypeText(ctx context.Context, e *Element, text string, clear, useClipboard bool) error {
	return nil
}
func (h *fakeHost) PressKey(ctx context.Context, e *Element, chord string) error { return nil }
func (h *fakeHost) SetValue(ctx context.Context, e *Element, value string) error { return nil }
func (h *fakeHost) SetToggled(ctx context.Context, e *Element, toggled bool) error { return nil }
func (h *fakeHost) SetSelected(ctx context.Context, e *Element, selected bool) error { return nil }
func (h *fakeHost) SelectOption(ctx context.Context, e *Element, option string) error { return nil }
func (h *fakeHost) SetRangeValue(ctx context.Context, e *Element, value float64) error { return nil }
func (h *fakeHost) Scroll(ctx context.Context, e *Element, direction string, amount float64) error {
	return nil
}
func (h *fakeHost) Invoke(ctx context.Context, e *Element) (ActionResult, error) {
	return ActionResult{}, nil
}
func (h *fakeHost) Capture(ctx context.Context, e *Element) ([]byte, error) { return nil, nil }
func (h *fakeHost) Children(ctx context.Context, e *Element) ([]*Element, error) { return nil, nil }
func (h *fakeHost) Parent(ctx context.Context, e *Element) (*Element, error) { return nil, nil }
func (h *fakeHost) Close(ctx context.Context, e *Element) error { return nil }
func (h *fakeHost) ActivateWindow(ctx context.Context, e *Element) error { return nil }
func (h *fakeHost) Refresh(ctx context.Context, e *Element) (Attributes, error) {
	return Attributes{Name: "refreshed"}, nil
}

func TestElement_ClickDispatchesThroughHost(t *testing.T) {
	host := &fakeHost{valid: true}
	el := New(host, "tok-1", 1, Attributes{Role: RoleButton, Name: "Save"})

	res, err := el.Click(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "invoke_pattern", res.Method)
	assert.Equal(t, 1, host.clicked)
}

func TestElement_StaleHandleShortCircuitsDispatch(t *testing.T) {
	host := &fakeHost{valid: false}
	el := New(host, "tok-1", 1, Attributes{Role: RoleButton})

	_, err := el.Click(context.Background())
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindStaleReference, e.Kind)
	assert.Zero(t, host.clicked)
}

func TestElement_RefreshUpdatesCachedAttributes(t *testing.T) {
	host := &fakeHost{valid: true}
	el := New(host, "tok-1", 1, Attributes{Name: "stale"})

	attrs, err := el.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed", attrs.Name)
	assert.Equal(t, "refreshed", el.Attributes().Name)
}

func TestElement_StateAccessorsReflectAttributes(t *testing.T) {
	el := New(&fakeHost{valid: true}, "tok-1", 1, Attributes{
		Enabled: true, Visible: true, Focused: false, Toggled: true, Selected: false,
	})
	assert.True(t, el.IsEnabled())
	assert.True(t, el.IsVisible())
	assert.False(t, el.IsFocused())
	assert.True(t, el.IsToggled())
	assert.False(t, el.IsSelected())
}

func TestElement_ParentIDRoundTrips(t *testing.T) {
	el := New(&fakeHost{valid: true}, "tok-1", 1, Attributes{})
	assert.Empty(t, el.ParentID())
	el.SetParentID("parent-1")
	assert.Equal(t, "parent-1", el.ParentID())
}

func TestBounds_ConvenienceAccessors(t *testing.T) {
	b := Bounds{X: 10, Y: 20, W: 100, H: 50}
	assert.Equal(t, 110.0, b.Right())
	assert.Equal(t, 70.0, b.Bottom())
	assert.Equal(t, 60.0, b.CenterX())
	assert.Equal(t, 45.0, b.CenterY())
}

func TestHighlight_CloseIsIdempotent(t *testing.T) {
	calls := 0
	h := NewHighlight(func() error {
		calls++
		return nil
	})
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 1, calls)
}

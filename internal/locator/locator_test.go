package locator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/platform/stubbackend"
)

func testLogger() *logging.Logger { return logging.New("error", "text") }

func sampleTree() *stubbackend.Node {
	return &stubbackend.Node{
		Attrs: element.Attributes{Role: element.RoleWindow, Name: "Main"},
		Children: []*stubbackend.Node{
			{Attrs: element.Attributes{Role: element.RoleButton, Name: "Save", Visible: true, Enabled: true}},
			{Attrs: element.Attributes{Role: element.RoleButton, Name: "Cancel", Visible: true, Enabled: true}},
			{Attrs: element.Attributes{Role: element.RoleEdit, Name: "Username", Visible: true, Enabled: true}},
		},
	}
}

func TestLocator_FirstResolvesUniqueMatch(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:Save")
	require.NoError(t, err)

	el, err := loc.First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Save", el.Attributes().Name)
}

func TestLocator_AmbiguousMatchErrors(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "role:Button")
	require.NoError(t, err)

	_, err = loc.First(context.Background())
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindAmbiguousSelector, e.Kind)
}

func TestLocator_NoMatchErrors(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:DoesNotExist")
	require.NoError(t, err)

	_, err = loc.First(context.Background())
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindElementNotFound, e.Kind)
}

func TestLocator_FallbacksTryInOrderAfterPrimaryFails(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:Missing")
	require.NoError(t, err)

	loc, err = loc.WithFallbacks("name:Cancel")
	require.NoError(t, err)

	el, err := loc.First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cancel", el.Attributes().Name)
}

func TestLocator_AlternativesRaceAndFirstWinnerWins(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:DoesNotExist")
	require.NoError(t, err)

	loc, err = loc.WithAlternatives("name:Save")
	require.NoError(t, err)

	el, err := loc.First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Save", el.Attributes().Name)
}

func TestLocator_ClickDispatchesToBackendAndRecordsAction(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:Save")
	require.NoError(t, err)

	res, err := loc.Click(context.Background(), DefaultActionOptions())
	require.NoError(t, err)
	assert.Equal(t, "invoke_pattern", res.Method)

	var clicked bool
	for _, a := range backend.Actions() {
		if a.Kind == "click" {
			clicked = true
		}
	}
	assert.True(t, clicked)
}

func TestLocator_ClickHighlightsWhenRequested(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:Save")
	require.NoError(t, err)

	opts := DefaultActionOptions()
	opts.HighlightBeforeAction = true
	_, err = loc.Click(context.Background(), opts)
	require.NoError(t, err)

	var highlighted bool
	for _, a := range backend.Actions() {
		if a.Kind == "highlight" {
			highlighted = true
		}
	}
	assert.True(t, highlighted)
}

func TestLocator_TypeTextFallsBackToClickWhenFocusFails(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	backend.SetFocusErr(errors.New("focus denied"))
	loc, err := New(backend, testLogger(), "name:Username")
	require.NoError(t, err)

	err = loc.TypeText(context.Background(), "hello", DefaultActionOptions())
	require.NoError(t, err)

	var focusFailed, clicked bool
	for _, a := range backend.Actions() {
		switch a.Kind {
		case "focus_failed":
			focusFailed = true
		case "click":
			clicked = true
		}
	}
	assert.True(t, focusFailed)
	assert.True(t, clicked)
}

func TestLocator_TypeTextSkipsClickFallbackWhenDisabled(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	backend.SetFocusErr(errors.New("focus denied"))
	loc, err := New(backend, testLogger(), "name:Username")
	require.NoError(t, err)

	opts := DefaultActionOptions()
	opts.TryClickBeforeAction = false
	err = loc.TypeText(context.Background(), "hello", opts)
	require.NoError(t, err)

	for _, a := range backend.Actions() {
		assert.NotEqual(t, "click", a.Kind)
	}
}

func TestLocator_ClickPopulatesUIDiffWhenRequested(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:Save")
	require.NoError(t, err)

	opts := DefaultActionOptions()
	opts.IncludeUIDiff = true
	res, err := loc.Click(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, res.UIDiff)
	assert.NotEmpty(t, res.UIDiff.Before)
}

func TestLocator_ClickCapturesScreenshotsWhenRequested(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:Save")
	require.NoError(t, err)

	opts := DefaultActionOptions()
	opts.IncludeWindowScreenshot = true
	opts.IncludeMonitorScreenshots = true
	res, err := loc.Click(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, res.Screenshots)
	assert.NotEmpty(t, res.Screenshots.Window)
	assert.NotEmpty(t, res.Screenshots.Monitors)
}

func TestLocator_ClickOmitsOptionalArtifactsByDefault(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:Save")
	require.NoError(t, err)

	res, err := loc.Click(context.Background(), DefaultActionOptions())
	require.NoError(t, err)
	assert.Nil(t, res.UIDiff)
	assert.Nil(t, res.Screenshots)
}

func TestLocator_AllReturnsEveryMatch(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "role:Button")
	require.NoError(t, err)

	els, err := loc.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, els, 2)
}

func TestLocator_NthDisambiguatesMultipleMatches(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "role:Button >> nth:1")
	require.NoError(t, err)

	el, err := loc.First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cancel", el.Attributes().Name)
}

func TestLocator_ValidateReportsBooleanWithoutErroring(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:Save")
	require.NoError(t, err)
	assert.True(t, loc.Validate(context.Background()))

	missing, err := New(backend, testLogger(), "name:Nope")
	require.NoError(t, err)
	assert.False(t, missing.Validate(context.Background()))
}

func TestLocator_StaleHandleIsTransientAndRetried(t *testing.T) {
	backend := stubbackend.New(sampleTree())
	loc, err := New(backend, testLogger(), "name:Save")
	require.NoError(t, err)

	// The stub never re-materializes elements after Invalidate, so every
	// retry attempt keeps observing the same stale generation; withRetry
	// still classifies StaleReference as transient and exhausts its retry
	// budget rather than failing on the first attempt.
	backend.Invalidate()

	_, err = loc.Click(context.Background(), ActionOptions{MaxRetries: 2})
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindStaleReference, e.Kind)
}

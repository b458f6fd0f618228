package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClickElement_UIDiffAndScreenshotsOptIn(t *testing.T) {
	s := testServer(t)
	res, err := s.InvokeTool(context.Background(), "click_element", map[string]interface{}{
		"selector":                    "name:Save",
		"include_ui_diff":             true,
		"include_window_screenshot":   true,
		"include_monitor_screenshots": true,
	})
	require.NoError(t, err)
	out, ok := res.(map[string]interface{})
	require.True(t, ok)

	_, hasDiff := out["uiDiff"]
	assert.True(t, hasDiff)
	screenshots, ok := out["screenshots"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, screenshots["window"])
	assert.NotEmpty(t, screenshots["monitors"])
}

func TestClickElement_OmitsOptionalArtifactsByDefault(t *testing.T) {
	s := testServer(t)
	res, err := s.InvokeTool(context.Background(), "click_element", map[string]interface{}{
		"selector": "name:Save",
	})
	require.NoError(t, err)
	out, ok := res.(map[string]interface{})
	require.True(t, ok)

	_, hasDiff := out["uiDiff"]
	_, hasScreenshots := out["screenshots"]
	assert.False(t, hasDiff)
	assert.False(t, hasScreenshots)
}

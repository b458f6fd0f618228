package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/config"
	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/platform/stubbackend"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	backend := stubbackend.New(&stubbackend.Node{
		Attrs: element.Attributes{Role: element.RoleWindow, Name: "Main"},
		Children: []*stubbackend.Node{
			{Attrs: element.Attributes{Role: element.RoleButton, Name: "Save", Visible: true, Enabled: true}},
		},
	})
	return New(&config.Config{}, logging.New("error", "text"), backend)
}

func TestServer_RegistersEveryToolExactlyOnce(t *testing.T) {
	s := testServer(t)
	defs := s.Tools()
	require.NotEmpty(t, defs)

	seen := map[string]bool{}
	for _, d := range defs {
		assert.False(t, seen[d.Name], "duplicate tool %q", d.Name)
		seen[d.Name] = true
		assert.NotEmpty(t, d.Description)
		assert.NotNil(t, d.Handler)
	}
}

func TestServer_InvokeToolDispatchesRegisteredHandler(t *testing.T) {
	s := testServer(t)
	res, err := s.InvokeTool(context.Background(), "click_element", map[string]interface{}{
		"selector": "name:Save",
	})
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestServer_InvokeToolUnknownNameErrors(t *testing.T) {
	s := testServer(t)
	_, err := s.InvokeTool(context.Background(), "not_a_real_tool", nil)
	assert.Error(t, err)
}

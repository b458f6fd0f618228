package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWorkflow = `
name: login-flow
description: logs into the app
steps:
  - id: click_login
    tool: click_element
    arguments:
      selector: "role:Button|name:Login"
  - id: type_user
    tool: type_into_element
    arguments:
      selector: "role:Edit|name:Username"
      text: "{{inputs.username}}"
`

func writeTempWorkflow(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_FromLocalPath(t *testing.T) {
	path := writeTempWorkflow(t, sampleWorkflow)

	wf, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "login-flow", wf.Name)
	require.Len(t, wf.Steps, 2)
	assert.Equal(t, "click_login", wf.Steps[0].ID)
}

func TestLoad_FromFileURL(t *testing.T) {
	path := writeTempWorkflow(t, sampleWorkflow)

	wf, err := Load(context.Background(), "file://"+path, nil)
	require.NoError(t, err)
	assert.Equal(t, "login-flow", wf.Name)
}

func TestLoad_AppliesOverrides(t *testing.T) {
	path := writeTempWorkflow(t, sampleWorkflow)

	wf, err := Load(context.Background(), path, map[string]interface{}{
		"description": "overridden description",
	})
	require.NoError(t, err)
	assert.Equal(t, "overridden description", wf.Description)
	assert.Equal(t, "login-flow", wf.Name)
}

func TestLoad_MissingNameIsRejected(t *testing.T) {
	path := writeTempWorkflow(t, "steps:\n  - id: a\n    tool: click_element\n")
	_, err := Load(context.Background(), path, nil)
	assert.Error(t, err)
}

func TestLoad_NoStepsIsRejected(t *testing.T) {
	path := writeTempWorkflow(t, "name: empty\nsteps: []\n")
	_, err := Load(context.Background(), path, nil)
	assert.Error(t, err)
}

func TestLoad_RemoteSourceRejectsLoopbackHost(t *testing.T) {
	_, err := Load(context.Background(), "http://127.0.0.1:9999/workflow.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestDir(t *testing.T) {
	assert.Equal(t, ".", Dir("https://example.com/workflow.yaml"))
	assert.Equal(t, filepath.Dir("/tmp/wf/workflow.yaml"), Dir("/tmp/wf/workflow.yaml"))
	assert.Equal(t, filepath.Dir("/tmp/wf/workflow.yaml"), Dir("file:///tmp/wf/workflow.yaml"))
}

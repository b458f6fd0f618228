package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/workflow"
)

func TestStore_LoadMissingReturnsNilNil(t *testing.T) {
	s := New(t.TempDir(), nil)
	ec, err := s.Load("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, ec)
}

func TestStore_SaveThenLoadRoundTrips(t *testing.T) {
	s := New(t.TempDir(), nil)
	ec := &workflow.ExecutionContext{
		RunID:        "run-1",
		WorkflowName: "login-flow",
		Inputs:       map[string]interface{}{"url": "https://example.com"},
		Steps: []workflow.StepResult{
			{StepID: "step1", Tool: "click_element", StartedAt: time.Now(), EndedAt: time.Now()},
		},
		CurrentStep: "step2",
		Iterations:  1,
		StartedAt:   time.Now(),
	}

	require.NoError(t, s.Save(ec))

	loaded, err := s.Load("login-flow")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, "login-flow", loaded.WorkflowName)
	assert.Equal(t, "step2", loaded.CurrentStep)
	assert.Len(t, loaded.Steps, 1)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestStore_LockExcludesConcurrentRun(t *testing.T) {
	s := New(t.TempDir(), nil)

	release, err := s.Lock(context.Background(), "login-flow")
	require.NoError(t, err)

	_, err = s.Lock(context.Background(), "login-flow")
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindWorkflowLocked, e.Kind)

	release()

	release2, err := s.Lock(context.Background(), "login-flow")
	require.NoError(t, err)
	release2()
}

func TestFileLocker_AcquireAndRelease(t *testing.T) {
	l := NewFileLocker(t.TempDir())

	release, err := l.Acquire(context.Background(), "wf")
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), "wf")
	assert.Error(t, err)

	release()

	release2, err := l.Acquire(context.Background(), "wf")
	require.NoError(t, err)
	release2()
}

package workflow

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSink_EmitWritesNDJSONWithMCPMarker(t *testing.T) {
	var buf bytes.Buffer
	sink := &EventSink{w: &buf}

	sink.Emit(Event{RunID: "run-1", StepID: "step-1", Type: "step_started"})

	line := strings.TrimRight(buf.String(), "\n")
	var decoded Event
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.True(t, decoded.MCPEvent)
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "step_started", decoded.Type)
	assert.False(t, decoded.Timestamp.IsZero())
}

func TestEventSink_EmitAppendsOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := &EventSink{w: &buf}

	sink.Emit(Event{RunID: "run-1", Type: "step_started"})
	sink.Emit(Event{RunID: "run-1", Type: "step_completed"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
}

func TestNewEventSink_EmptyPathFallsBackToStderr(t *testing.T) {
	sink, err := NewEventSink("")
	require.NoError(t, err)
	require.NoError(t, sink.Close())
}

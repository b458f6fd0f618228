package workflow

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// Event is one line of the NDJSON progress stream emitted while a workflow
// runs (spec §5 "progress events"), wrapped so a consumer tailing stderr (or
// the MCP_EVENT_PIPE named pipe) can distinguish engine events from any
// other line-oriented output sharing the same stream.
type Event struct {
	MCPEvent  bool                   `json:"__mcp_event__"`
	RunID     string                 `json:"run_id"`
	StepID    string                 `json:"step_id,omitempty"`
	Type      string                 `json:"type"` // "step_started" | "step_completed" | "step_failed" | "run_completed"
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventSink writes Events as NDJSON to an underlying writer (stderr by
// default, or the path named by MCP_EVENT_PIPE).
type EventSink struct {
	mu sync.Mutex
	w  io.Writer
	rm io.Closer
}

// NewEventSink opens pipePath (if non-empty) or falls back to stderr.
func NewEventSink(pipePath string) (*EventSink, error) {
	if pipePath == "" {
		return &EventSink{w: os.Stderr}, nil
	}
	f, err := os.OpenFile(pipePath, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return &EventSink{w: f, rm: f}, nil
}

// Emit writes one NDJSON line. Write errors are swallowed: a consumer that
// stopped reading the event pipe must never take the workflow itself down.
func (s *EventSink) Emit(ev Event) {
	ev.MCPEvent = true
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(append(data, '\n'))
}

// Close releases the underlying pipe, if one was opened.
func (s *EventSink) Close() error {
	if s.rm != nil {
		return s.rm.Close()
	}
	return nil
}

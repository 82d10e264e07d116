package framework

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// EventType categorizes telemetry events.
type EventType string

const (
	EventRunStart             EventType = "run_start"
	EventRunFinish            EventType = "run_finish"
	EventAnalysisStart        EventType = "analysis_start"
	EventPlanReady            EventType = "plan_ready"
	EventPlanFallback         EventType = "plan_fallback"
	EventChangeDiscarded      EventType = "change_discarded"
	EventExecutionStart       EventType = "execution_start"
	EventExecutionDone        EventType = "execution_done"
	EventSpecialistError      EventType = "specialist_error"
	EventValidationAccepted   EventType = "validation_accepted"
	EventValidationRejected   EventType = "validation_rejected"
	EventProactivePlan        EventType = "proactive_plan"
	EventProactiveFallthrough EventType = "proactive_fallthrough"
)

// Event captures structured telemetry data emitted by pipeline stages.
type Event struct {
	Type      EventType      `json:"type"`
	IssueID   string         `json:"issue_id,omitempty"`
	File      string         `json:"file,omitempty"`
	Stage     string         `json:"stage,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Telemetry captures execution traces emitted by the pipeline. Production
// deployments can implement exporters here, while tests typically swap in
// lightweight recorders.
type Telemetry interface {
	Emit(event Event)
}

// MultiplexTelemetry broadcasts events to multiple sinks.
type MultiplexTelemetry struct {
	Sinks []Telemetry
}

// Emit forwards the event to all registered sinks.
func (m MultiplexTelemetry) Emit(event Event) {
	for _, s := range m.Sinks {
		s.Emit(event)
	}
}

// JSONFileTelemetry writes events as newline-delimited JSON so external
// tools can tail the stream in real time.
type JSONFileTelemetry struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewJSONFileTelemetry opens (or creates) the NDJSON event log at path.
func NewJSONFileTelemetry(path string) (*JSONFileTelemetry, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileTelemetry{path: path, file: file}, nil
}

// Emit appends one event as a JSON line.
func (j *JSONFileTelemetry) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		log.Printf("telemetry: write %s: %v", j.path, err)
	}
}

// Close flushes and closes the underlying file.
func (j *JSONFileTelemetry) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// LogTelemetry mirrors events onto a standard logger. Useful as a default
// sink when no event log path is configured.
type LogTelemetry struct {
	Logger *log.Logger
}

// Emit writes a compact one-line rendering of the event.
func (l LogTelemetry) Emit(event Event) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	if event.Message != "" {
		logger.Printf("[%s] issue=%s file=%s %s", event.Type, event.IssueID, event.File, event.Message)
		return
	}
	logger.Printf("[%s] issue=%s file=%s", event.Type, event.IssueID, event.File)
}

// Package telemetry defines tool-run telemetry events and the on-disk log
// they are appended to.
package telemetry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of an event.
type Kind string

// ToolRun is a single execution of the instrumented tool.
const ToolRun Kind = "tool_run"

// Store records telemetry events.
type Store interface {
	Record(event *Event) error
}

// Event is one telemetry record.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Time       time.Time `json:"time"`
	Tool       string    `json:"tool"`
	DurationMS uint64    `json:"duration_ms"`
	ExitCode   int       `json:"exit_code"`

	// Errors holds every error code seen in the tool's diagnostic output,
	// in encounter order. Nil when nothing matched; never empty.
	Errors []string `json:"errors,omitempty"`
}

// NewToolRun builds a tool-run event. An empty errs slice is stored as nil.
func NewToolRun(tool string, duration time.Duration, exitCode int, errs []string) *Event {
	if len(errs) == 0 {
		errs = nil
	}
	ms := duration.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return &Event{
		ID:         uuid.New().String(),
		Kind:       ToolRun,
		Time:       time.Now().UTC(),
		Tool:       tool,
		DurationMS: uint64(ms),
		ExitCode:   exitCode,
		Errors:     errs,
	}
}

// Failed reports whether the tool exited with a non-zero code.
func (e *Event) Failed() bool {
	return e.ExitCode != 0
}

// Expect returns an error if the event's Kind does not match want.
func (e *Event) Expect(want Kind) error {
	if e.Kind != want {
		return fmt.Errorf("event %s is a %s event, not a %s event", e.ID, e.Kind, want)
	}
	return nil
}

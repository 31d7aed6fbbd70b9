// Package notify carries non-fatal notifications from the runner and the
// telemetry store up to whatever surface reports them to the user.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Kind identifies a notification.
type Kind int

const (
	// TelemetryCleanupError reports that recording a telemetry event
	// failed. The invocation carries on regardless.
	TelemetryCleanupError Kind = iota
	// RunningCommand reports the command about to be executed.
	RunningCommand
	// SettingsWritten reports that settings.yaml was updated.
	SettingsWritten
	// CaptureError reports that captured diagnostic output could not be
	// read back in full.
	CaptureError
)

func (k Kind) String() string {
	switch k {
	case TelemetryCleanupError:
		return "telemetry_cleanup_error"
	case RunningCommand:
		return "running_command"
	case SettingsWritten:
		return "settings_written"
	case CaptureError:
		return "capture_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Notification is a single event handed to a Handler.
type Notification struct {
	Kind Kind
	Tool string // executable name, if any
	Path string // file or directory involved, if any
	Err  error
}

// Level returns the log level the notification should be reported at.
func (n Notification) Level() slog.Level {
	switch n.Kind {
	case TelemetryCleanupError, CaptureError:
		return slog.LevelWarn
	case RunningCommand:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Message returns a human-readable description.
func (n Notification) Message() string {
	switch n.Kind {
	case TelemetryCleanupError:
		if n.Err != nil {
			return fmt.Sprintf("unable to clean up telemetry: %v", n.Err)
		}
		return "unable to clean up telemetry"
	case RunningCommand:
		return fmt.Sprintf("running command '%s'", n.Tool)
	case SettingsWritten:
		return fmt.Sprintf("wrote settings to %s", n.Path)
	case CaptureError:
		return fmt.Sprintf("unable to read diagnostics of '%s': %v", n.Tool, n.Err)
	default:
		return n.Kind.String()
	}
}

// Handler receives notifications. Handlers must not block for long and
// must never panic.
type Handler func(Notification)

// Discard ignores every notification.
func Discard(Notification) {}

// NewLogHandler returns a Handler that logs each notification to logger
// at the notification's level.
func NewLogHandler(logger *slog.Logger) Handler {
	return func(n Notification) {
		attrs := []any{"kind", n.Kind.String()}
		if n.Tool != "" {
			attrs = append(attrs, "tool", n.Tool)
		}
		if n.Path != "" {
			attrs = append(attrs, "path", n.Path)
		}
		if n.Err != nil {
			attrs = append(attrs, "error", n.Err)
		}
		logger.Log(context.Background(), n.Level(), n.Message(), attrs...)
	}
}

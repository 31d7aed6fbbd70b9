package notify

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNotification_Level(t *testing.T) {
	tests := []struct {
		kind Kind
		want slog.Level
	}{
		{TelemetryCleanupError, slog.LevelWarn},
		{RunningCommand, slog.LevelDebug},
		{SettingsWritten, slog.LevelInfo},
		{CaptureError, slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := (Notification{Kind: tt.kind}).Level(); got != tt.want {
			t.Errorf("%s.Level() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestNotification_Message(t *testing.T) {
	n := Notification{Kind: TelemetryCleanupError, Err: errors.New("disk full")}
	if got := n.Message(); got != "unable to clean up telemetry: disk full" {
		t.Errorf("Message() = %q", got)
	}
	n = Notification{Kind: RunningCommand, Tool: "lean"}
	if got := n.Message(); got != "running command 'lean'" {
		t.Errorf("Message() = %q", got)
	}
}

func TestNewLogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	h := NewLogHandler(logger)

	h(Notification{Kind: TelemetryCleanupError, Path: "/tmp/telemetry", Err: errors.New("boom")})
	h(Notification{Kind: RunningCommand, Tool: "lean"}) // below Info, dropped

	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("output = %q, want level=WARN", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("output = %q, want error=boom", out)
	}
	if !strings.Contains(out, "path=/tmp/telemetry") {
		t.Errorf("output = %q, want path attribute", out)
	}
	if strings.Contains(out, "running command") {
		t.Errorf("debug notification leaked into info-level output: %q", out)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deixis/toolshim/internal/notify"
)

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Settings(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "version: 1\ntelemetry: true\ntool: lake\ntelemetry_max_files: 7\n")

	cfg, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Home != dir {
		t.Errorf("Home = %q, want %q", cfg.Home, dir)
	}
	if cfg.Settings.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Settings.Version)
	}
	if cfg.Tool() != "lake" {
		t.Errorf("Tool() = %q, want lake", cfg.Tool())
	}
	if got := cfg.TelemetryStore().MaxFiles; got != 7 {
		t.Errorf("TelemetryStore().MaxFiles = %d, want 7", got)
	}
	if cfg.Notify == nil {
		t.Error("Notify is nil")
	}
}

func TestLoad_NoSettingsFile(t *testing.T) {
	t.Setenv(EnvTelemetry, "")
	dir := t.TempDir()

	cfg, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tool() != DefaultTool {
		t.Errorf("Tool() = %q, want %q", cfg.Tool(), DefaultTool)
	}
	enabled, err := cfg.TelemetryEnabled()
	if err != nil {
		t.Fatalf("TelemetryEnabled: %v", err)
	}
	if enabled {
		t.Error("TelemetryEnabled() = true, want false by default")
	}
	if cfg.TelemetryDir() != filepath.Join(dir, "telemetry") {
		t.Errorf("TelemetryDir() = %q", cfg.TelemetryDir())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "telemetry: [not a bool\n")

	_, err := Load(dir, nil)
	if err == nil {
		t.Fatal("expected error for invalid settings")
	}
	if !strings.Contains(err.Error(), "parsing settings.yaml") {
		t.Errorf("error = %q, want parsing error", err)
	}
}

func TestLoad_DefaultHomeFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Home != dir {
		t.Errorf("Home = %q, want %q", cfg.Home, dir)
	}
}

func TestTelemetryEnabled(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		env      string
		want     bool
		wantErr  bool
	}{
		{name: "settings on", settings: "telemetry: true\n", want: true},
		{name: "settings off", settings: "telemetry: false\n", want: false},
		{name: "env overrides settings", settings: "telemetry: false\n", env: "1", want: true},
		{name: "env disables", settings: "telemetry: true\n", env: "false", want: false},
		{name: "invalid env", settings: "telemetry: true\n", env: "maybe", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvTelemetry, tt.env)
			dir := t.TempDir()
			writeSettings(t, dir, tt.settings)
			cfg, err := Load(dir, nil)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			got, err := cfg.TelemetryEnabled()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), EnvTelemetry) {
					t.Errorf("error = %q, want it to name %s", err, EnvTelemetry)
				}
				return
			}
			if err != nil {
				t.Fatalf("TelemetryEnabled: %v", err)
			}
			if got != tt.want {
				t.Errorf("TelemetryEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetTelemetry_RoundTrip(t *testing.T) {
	t.Setenv(EnvTelemetry, "")
	dir := filepath.Join(t.TempDir(), "home")

	var notes []notify.Notification
	cfg, err := Load(dir, func(n notify.Notification) { notes = append(notes, n) })
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.SetTelemetry(true); err != nil {
		t.Fatalf("SetTelemetry: %v", err)
	}
	if len(notes) != 1 || notes[0].Kind != notify.SettingsWritten {
		t.Errorf("notifications = %+v, want one SettingsWritten", notes)
	}

	reloaded, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	enabled, err := reloaded.TelemetryEnabled()
	if err != nil {
		t.Fatal(err)
	}
	if !enabled {
		t.Error("telemetry not persisted")
	}
	if reloaded.Settings.Version != 1 {
		t.Errorf("Version = %d, want 1", reloaded.Settings.Version)
	}
}

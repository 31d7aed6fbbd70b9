// Package config loads toolshim's settings.yaml and exposes the ambient
// configuration the runner consults on every invocation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/deixis/toolshim/internal/notify"
	"github.com/deixis/toolshim/internal/telemetry"
)

// Environment variables consulted by Load and TelemetryEnabled.
const (
	EnvHome      = "TOOLSHIM_HOME"
	EnvTelemetry = "TOOLSHIM_TELEMETRY"
)

// DefaultTool is the instrumented tool when settings name none.
const DefaultTool = "lean"

// SettingsFile is the name of the settings file inside the home directory.
const SettingsFile = "settings.yaml"

// Settings holds the parsed settings.yaml.
// All fields are optional; zero values represent defaults.
type Settings struct {
	Version           int    `yaml:"version"`
	Telemetry         *bool  `yaml:"telemetry,omitempty"`
	Tool              string `yaml:"tool,omitempty"`                // instrumented tool name
	TelemetryMaxFiles int    `yaml:"telemetry_max_files,omitempty"` // daily log files kept
}

// Config is the ambient configuration for one invocation.
type Config struct {
	Home     string
	Settings *Settings

	// Notify receives non-fatal warnings. Never nil after Load.
	Notify notify.Handler
}

// Load reads settings.yaml from home. If home is empty, DefaultHome is
// used. A missing settings file yields default settings.
func Load(home string, handler notify.Handler) (*Config, error) {
	if home == "" {
		var err error
		home, err = DefaultHome()
		if err != nil {
			return nil, err
		}
	}
	if handler == nil {
		handler = notify.Discard
	}

	settings := &Settings{}
	data, err := os.ReadFile(filepath.Join(home, SettingsFile))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", SettingsFile, err)
		}
	} else if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", SettingsFile, err)
	}

	return &Config{Home: home, Settings: settings, Notify: handler}, nil
}

// DefaultHome returns $TOOLSHIM_HOME, or ~/.toolshim.
func DefaultHome() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(userHome, ".toolshim"), nil
}

// TelemetryEnabled reports whether tool-run telemetry should be recorded.
// $TOOLSHIM_TELEMETRY takes precedence over settings; an unparsable value
// is an error rather than a silent "disabled".
func (c *Config) TelemetryEnabled() (bool, error) {
	if raw, ok := os.LookupEnv(EnvTelemetry); ok && raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return false, fmt.Errorf("invalid %s value %q: %w", EnvTelemetry, raw, err)
		}
		return enabled, nil
	}
	if c.Settings != nil && c.Settings.Telemetry != nil {
		return *c.Settings.Telemetry, nil
	}
	return false, nil
}

// Tool returns the instrumented tool name.
func (c *Config) Tool() string {
	if c.Settings != nil && c.Settings.Tool != "" {
		return c.Settings.Tool
	}
	return DefaultTool
}

// TelemetryDir returns the directory telemetry logs are written to.
func (c *Config) TelemetryDir() string {
	return filepath.Join(c.Home, "telemetry")
}

// TelemetryStore returns the log store rooted at TelemetryDir.
func (c *Config) TelemetryStore() *telemetry.DiskStore {
	s := telemetry.NewDiskStore(c.TelemetryDir())
	if c.Settings != nil && c.Settings.TelemetryMaxFiles > 0 {
		s.MaxFiles = c.Settings.TelemetryMaxFiles
	}
	return s
}

// SetTelemetry persists the telemetry setting to settings.yaml.
func (c *Config) SetTelemetry(enabled bool) error {
	if c.Settings == nil {
		c.Settings = &Settings{}
	}
	c.Settings.Telemetry = &enabled
	if c.Settings.Version == 0 {
		c.Settings.Version = 1
	}
	return c.save()
}

func (c *Config) save() error {
	if err := os.MkdirAll(c.Home, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.Home, err)
	}
	data, err := yaml.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", SettingsFile, err)
	}

	path := filepath.Join(c.Home, SettingsFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", SettingsFile, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing %s: %w", SettingsFile, err)
	}
	c.Notify(notify.Notification{Kind: notify.SettingsWritten, Path: path})
	return nil
}

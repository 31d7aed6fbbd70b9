// Package runner executes a tool as a child process so that it behaves as
// if it had been launched directly, recording tool-run telemetry for the
// instrumented tool.
package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deixis/toolshim/internal/config"
	"github.com/deixis/toolshim/internal/notify"
	"github.com/deixis/toolshim/internal/telemetry"
)

// exitFunc terminates the process. Tests override it to observe the
// exit code instead of exiting.
var exitFunc = os.Exit

// TelemetryConfig reports whether telemetry is enabled.
// Implemented by config.Config.
type TelemetryConfig interface {
	TelemetryEnabled() (bool, error)
}

// Runner runs commands, choosing per invocation between direct execution
// and the telemetry-capturing path.
type Runner struct {
	Tool      string // instrumented tool name, without any .exe suffix
	Telemetry TelemetryConfig
	Store     telemetry.Store
	Notify    notify.Handler

	// Stdin and Stdout are handed to the child as-is.
	Stdin  *os.File
	Stdout *os.File
	// Stderr receives the relayed diagnostic stream of the instrumented
	// tool.
	Stderr io.Writer

	IsTerminal func() bool     // reports whether the real stderr is a terminal
	Now        func() time.Time // monotonic clock used for durations
}

// New returns a Runner wired to cfg and the process's standard streams.
func New(cfg *config.Config) *Runner {
	return &Runner{
		Tool:       cfg.Tool(),
		Telemetry:  cfg,
		Store:      cfg.TelemetryStore(),
		Notify:     cfg.Notify,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		IsTerminal: StderrIsTerminal,
		Now:        time.Now,
	}
}

// RunningCommandError reports that a command could not be run.
type RunningCommandError struct {
	Name string
	Err  error
}

func (e *RunningCommandError) Error() string {
	return fmt.Sprintf("running command '%s': %v", e.Name, e.Err)
}

func (e *RunningCommandError) Unwrap() error {
	return e.Err
}

// Run executes name with args. When the child runs to completion the
// process exits with the child's exit code, so Run only returns on
// failure.
//
// The telemetry path is taken when name is the instrumented tool and
// telemetry is enabled. A failure to determine whether telemetry is
// enabled is returned without running anything.
func (r *Runner) Run(name string, args []string) error {
	if r.instrumented(name) && r.Telemetry != nil {
		enabled, err := r.Telemetry.TelemetryEnabled()
		if err != nil {
			return fmt.Errorf("checking telemetry: %w", err)
		}
		if enabled {
			return r.runWithTelemetry(name, args)
		}
	}
	r.notify(notify.Notification{Kind: notify.RunningCommand, Tool: name})
	return r.execDirect(name, args)
}

func (r *Runner) instrumented(name string) bool {
	return strings.TrimSuffix(filepath.Base(name), ".exe") == r.tool()
}

// tool returns the instrumented tool name recorded in events.
func (r *Runner) tool() string {
	if r.Tool == "" {
		return config.DefaultTool
	}
	return r.Tool
}

func (r *Runner) notify(n notify.Notification) {
	if r.Notify != nil {
		r.Notify(n)
	}
}

func (r *Runner) stdin() *os.File {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r *Runner) stdout() *os.File {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/deixis/toolshim/internal/notify"
	"github.com/deixis/toolshim/internal/telemetry"
)

// colorFlag is the prefix of the tool's color-control arguments.
const colorFlag = "--color"

// runWithTelemetry runs the instrumented tool with its stderr captured,
// relays the captured output, and records a tool-run event. If the child
// ran, the process exits with its exit code.
func (r *Runner) runWithTelemetry(name string, args []string) error {
	code, err := r.runCaptured(name, args)
	if err != nil {
		return err
	}
	// The capture file is already released; exiting skips deferred calls.
	exitFunc(code)
	return nil
}

// runCaptured returns the child's exit code, or a RunningCommandError if
// the child could not be started or waited on.
func (r *Runner) runCaptured(name string, args []string) (int, error) {
	args = r.colorArgs(args)

	capture, err := os.CreateTemp("", "toolshim-stderr-*")
	if err != nil {
		return 0, &RunningCommandError{Name: name, Err: fmt.Errorf("creating stderr capture: %w", err)}
	}
	if unlinkOpenFiles {
		// The descriptor outlives the name, so nothing is left behind even
		// if the wrapper is killed.
		_ = os.Remove(capture.Name())
	}
	defer func() {
		_ = capture.Close()
		_ = os.Remove(capture.Name())
	}()

	cmd := exec.Command(name, args...)
	if errors.Is(cmd.Err, exec.ErrDot) {
		// Run what a shell would run from the same PATH.
		cmd.Err = nil
	}
	cmd.Stdin = r.stdin()
	cmd.Stdout = r.stdout()
	// An *os.File is passed to the child as its descriptor; nothing copies.
	cmd.Stderr = capture

	r.notify(notify.Notification{Kind: notify.RunningCommand, Tool: name})

	// The child shares the terminal's process group and handles interrupts
	// itself; the wrapper stays alive to relay and record.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	start := r.now()
	runErr := cmd.Start()
	if runErr == nil {
		runErr = cmd.Wait()
	}
	duration := r.now().Sub(start)

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		r.record(name, telemetry.NewToolRun(r.tool(), duration, osErrorCode(runErr), nil))
		return 0, &RunningCommandError{Name: name, Err: runErr}
	}

	code := cmd.ProcessState.ExitCode()
	if code < 0 {
		// Terminated by a signal.
		code = 1
	}

	var codes []string
	if _, err := capture.Seek(0, io.SeekStart); err != nil {
		r.notify(notify.Notification{Kind: notify.CaptureError, Tool: name, Path: capture.Name(), Err: err})
	} else {
		codes, err = relay(capture, r.stderr())
		if err != nil {
			r.notify(notify.Notification{Kind: notify.CaptureError, Tool: name, Path: capture.Name(), Err: err})
		}
	}

	r.record(name, telemetry.NewToolRun(r.tool(), duration, code, codes))
	return code, nil
}

// colorArgs appends "--color always" when stderr is a terminal and no
// color argument was given.
func (r *Runner) colorArgs(args []string) []string {
	for _, arg := range args {
		if strings.HasPrefix(arg, colorFlag) {
			return args
		}
	}
	if r.IsTerminal == nil || !r.IsTerminal() {
		return args
	}
	return append(slices.Clip(args), colorFlag, "always")
}

// record hands event to the store. A store failure never affects the
// invocation; it is only reported.
func (r *Runner) record(name string, event *telemetry.Event) {
	if r.Store == nil {
		return
	}
	if err := r.Store.Record(event); err != nil {
		r.notify(notify.Notification{Kind: notify.TelemetryCleanupError, Tool: name, Err: err})
	}
}

// relay copies src to dst line by line, unmodified, and collects the
// error codes found along the way. Write errors on dst are ignored so
// that scanning still covers the whole stream.
func relay(src io.Reader, dst io.Writer) ([]string, error) {
	var codes []string
	reader := bufio.NewReader(src)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			_, _ = io.WriteString(dst, line)
			codes = append(codes, ScanErrorCodes(line)...)
		}
		if err != nil {
			if err == io.EOF {
				return codes, nil
			}
			return codes, fmt.Errorf("reading captured stderr: %w", err)
		}
	}
}

// osErrorCode returns the OS error number carried by err, or 1. A name
// not found on PATH reports ENOENT, as the OS spawn would.
func osErrorCode(err error) int {
	if errors.Is(err, exec.ErrNotFound) {
		return int(syscall.ENOENT)
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return int(errno)
	}
	return 1
}

//go:build windows

package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// execDirect runs name to completion and exits with its exit code. Windows
// has no in-place process replacement, so the parent waits and relays the
// code instead.
func (r *Runner) execDirect(name string, args []string) error {
	cmd := exec.Command(name, args...)
	if errors.Is(cmd.Err, exec.ErrDot) {
		cmd.Err = nil
	}
	cmd.Stdin = r.stdin()
	cmd.Stdout = r.stdout()
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return &RunningCommandError{Name: name, Err: err}
		}
	}

	code := cmd.ProcessState.ExitCode()
	if code < 0 {
		panic(fmt.Sprintf("%s exited without an exit code", name))
	}
	exitFunc(code)
	return nil
}

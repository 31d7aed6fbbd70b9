//go:build !windows

package runner

import (
	"errors"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// execFunc replaces the current process image. Tests override it to
// capture the call instead of replacing the test binary.
var execFunc = unix.Exec

// execDirect replaces the current process with name. The child keeps the
// process's standard streams. It only returns if the replacement failed.
func (r *Runner) execDirect(name string, args []string) error {
	path, err := exec.LookPath(name)
	if err != nil && !errors.Is(err, exec.ErrDot) {
		return &RunningCommandError{Name: name, Err: err}
	}

	argv := make([]string, 0, 1+len(args))
	argv = append(argv, name)
	argv = append(argv, args...)

	err = execFunc(path, argv, os.Environ())
	return &RunningCommandError{Name: name, Err: err}
}

package runner

import (
	"os"

	"golang.org/x/term"
)

// StderrIsTerminal reports whether the process's stderr is attached to an
// interactive terminal. Any failure of the underlying query reports false.
func StderrIsTerminal() bool {
	if os.Stderr == nil {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

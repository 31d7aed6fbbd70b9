//go:build windows

package runner

// unlinkOpenFiles reports whether a file can be removed while open.
const unlinkOpenFiles = false

// Package toolshim runs a designated tool as a child process and records
// tool-run telemetry about it.
package toolshim

// Version is the toolshim release version.
const Version = "0.3.0"

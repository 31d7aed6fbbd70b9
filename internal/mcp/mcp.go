// Package mcp provides the toolshim MCP server, which exposes recorded
// tool-run telemetry to MCP clients.
package mcp

import (
	_ "embed"

	"github.com/deixis/toolshim"
	"github.com/deixis/toolshim/internal/telemetry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// defaultLimit bounds how many events a tool call reads when the client
// does not ask for a specific number.
const defaultLimit = 50

// EventSource lists recorded events, newest first.
// Implemented by telemetry.DiskStore.
type EventSource interface {
	List(limit int) ([]*telemetry.Event, error)
}

// handler holds shared dependencies for all tool handlers.
type handler struct {
	events EventSource
	tool   string
}

// NewServer creates an MCP server with all toolshim tools registered.
// tool is the name of the instrumented tool, used in descriptions.
func NewServer(events EventSource, tool string) *mcp.Server {
	h := &handler{events: events, tool: tool}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "toolshim", Version: toolshim.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "telemetry_runs",
		Description: `List recent runs of the instrumented tool, newest first.

Each run shows its id, time, duration, exit code, and the error codes
reported in the tool's diagnostics. Use telemetry_inspect with an id
for the full record.`,
	}, h.runsHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "telemetry_summary",
		Description: `Summarise recent runs: run and failure counts, mean duration,
and how often each error code was reported.`,
	}, h.summaryHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "telemetry_inspect",
		Description: "Show the full telemetry record of a single run by id.",
	}, h.inspectHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/toolshim/internal/telemetry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectParams struct {
	ID string `json:"id" jsonschema:"the run id from telemetry_runs"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.ID == "" {
		return errorResult("id is required")
	}

	events, err := h.events.List(0)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to read telemetry: %v", err))
	}
	for _, e := range events {
		if e.ID == params.ID {
			if err := e.Expect(telemetry.ToolRun); err != nil {
				return errorResult(err.Error())
			}
			return textResult(formatInspectOutput(e))
		}
	}
	return errorResult(fmt.Sprintf("No run with id %s.", params.ID))
}

func formatInspectOutput(e *telemetry.Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s (%s)\n", e.ID, e.Kind)
	fmt.Fprintf(&b, "Tool: %s\n", e.Tool)
	fmt.Fprintf(&b, "Time: %s\n", e.Time.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration: %s\n", time.Duration(e.DurationMS)*time.Millisecond)
	fmt.Fprintf(&b, "Exit code: %d\n", e.ExitCode)

	if len(e.Errors) == 0 {
		fmt.Fprintln(&b, "Errors: none")
		return b.String()
	}
	fmt.Fprintf(&b, "Errors (%d):\n", len(e.Errors))
	for _, code := range e.Errors {
		fmt.Fprintf(&b, "  %s\n", code)
	}
	return b.String()
}

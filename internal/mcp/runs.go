package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/toolshim/internal/telemetry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type runsParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return, newest first. Default: 50."`
}

func (h *handler) runsHandler(ctx context.Context, req *mcp.CallToolRequest, params runsParams) (*mcp.CallToolResult, any, error) {
	events, err := h.events.List(limitOrDefault(params.Limit))
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to read telemetry: %v", err))
	}
	if len(events) == 0 {
		return textResult(fmt.Sprintf("No %s runs recorded.", h.tool))
	}
	return textResult(formatRuns(events))
}

func formatRuns(events []*telemetry.Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Runs (%d):\n", len(events))
	for _, e := range events {
		status := "ok"
		if e.Failed() {
			status = fmt.Sprintf("exit %d", e.ExitCode)
		}
		fmt.Fprintf(&b, "  %s  %s  %-8s %s",
			e.ID, e.Time.Format(time.RFC3339), status, time.Duration(e.DurationMS)*time.Millisecond)
		if len(e.Errors) > 0 {
			fmt.Fprintf(&b, "  [%s]", strings.Join(e.Errors, " "))
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}

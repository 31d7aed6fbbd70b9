package mcp

import (
	"context"
	"fmt"

	"github.com/deixis/toolshim/internal/telemetry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type summaryParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of most recent runs to summarise. Default: 50."`
}

func (h *handler) summaryHandler(ctx context.Context, req *mcp.CallToolRequest, params summaryParams) (*mcp.CallToolResult, any, error) {
	events, err := h.events.List(limitOrDefault(params.Limit))
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to read telemetry: %v", err))
	}
	return textResult(telemetry.Summarize(events).String())
}

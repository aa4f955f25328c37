package handlers

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/cadence/internal/interchange"
)

// ExportTasks returns a handler that emits the full JSON export document.
func ExportTasks(exp *interchange.Exporter) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := exp.Marshal()
		if err != nil {
			return errorText(err), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

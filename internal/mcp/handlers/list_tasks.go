package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/cadence/internal/tracker"
)

// ListTasks returns a handler that lists the whole working set.
func ListTasks(tr *tracker.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		category, _ := args["category"].(string)

		tasks, err := tr.List()
		if err != nil {
			return errorText(err), nil
		}

		var sb strings.Builder
		shown := 0
		for i := range tasks {
			if category != "" && tasks[i].Category != category {
				continue
			}
			writeTaskLine(&sb, &tasks[i], "")
			shown++
		}

		if shown == 0 {
			return mcp.NewToolResultText("No tasks found."), nil
		}

		header := fmt.Sprintf("📋 Tasks (%d)\n\n", shown)
		return mcp.NewToolResultText(header + sb.String()), nil
	}
}

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/cadence/internal/tracker"
)

// ListDueTasks returns a handler that shows the grouped due forest for a date.
func ListDueTasks(tr *tracker.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		date, err := argDate(args, "date")
		if err != nil {
			return mcp.NewToolResultText(fmt.Sprintf("❌ invalid date: %v", err)), nil
		}

		items, err := tr.DueOn(date)
		if err != nil {
			return errorText(err), nil
		}

		if len(items) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("Nothing due on %s. 🎉", date)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "📋 Due on %s\n\n", date)
		for i := range items {
			writeTaskLine(&sb, &items[i].Task, "")
			for j := range items[i].Children {
				writeTaskLine(&sb, &items[i].Children[j], "  ")
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

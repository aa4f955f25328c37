package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/cadence/internal/tracker"
)

// CompleteTask returns a handler that records a completion event.
func CompleteTask(tr *tracker.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		id, ok := args["task_id"].(string)
		if !ok || id == "" {
			return mcp.NewToolResultText("❌ task_id is required"), nil
		}

		date, err := argDate(args, "date")
		if err != nil {
			return mcp.NewToolResultText(fmt.Sprintf("❌ invalid date: %v", err)), nil
		}

		result, err := tr.Complete(id, date)
		if err != nil {
			return errorText(err), nil
		}

		var sb strings.Builder
		if result.Removed {
			fmt.Fprintf(&sb, "✅ **%s** completed and removed (one-shot task).\n", result.Task.Name)
		} else if result.Task.NextDue.IsZero() {
			fmt.Fprintf(&sb, "✅ **%s** completed, streak %d. Dormant until triggered again.\n",
				result.Task.Name, result.Task.CompletionStreak)
		} else {
			fmt.Fprintf(&sb, "✅ **%s** completed, streak %d. Next due %s.\n",
				result.Task.Name, result.Task.CompletionStreak, result.Task.NextDue)
		}

		for _, a := range result.Activated {
			fmt.Fprintf(&sb, "⚡ Activated %s, due %s\n", a.TaskID, a.NextDue)
		}
		for _, pid := range result.AutoCompleted {
			fmt.Fprintf(&sb, "✅ Parent %s auto-completed\n", pid)
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

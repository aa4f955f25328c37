package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/cadence/internal/tracker"
)

// ActivateTask returns a handler that manually schedules a task.
func ActivateTask(tr *tracker.Tracker) server.ToolHandlerFunc {
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

		t, err := tr.Activate(id, date)
		if err != nil {
			return errorText(err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("⚡ **%s** is now due %s", t.Name, t.NextDue)), nil
	}
}

// DeleteTask returns a handler that removes a task permanently.
func DeleteTask(tr *tracker.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		id, ok := args["task_id"].(string)
		if !ok || id == "" {
			return mcp.NewToolResultText("❌ task_id is required"), nil
		}

		if err := tr.Delete(id); err != nil {
			return errorText(err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("🗑️ Task %s deleted.", id)), nil
	}
}

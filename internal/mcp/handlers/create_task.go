package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/cadence/internal/task"
	"github.com/kolapsis/cadence/internal/tracker"
)

// CreateTask returns a handler that creates a new task.
func CreateTask(tr *tracker.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		name, ok := args["name"].(string)
		if !ok || name == "" {
			return mcp.NewToolResultText("❌ name is required"), nil
		}
		unit, ok := args["interval_unit"].(string)
		if !ok || unit == "" {
			return mcp.NewToolResultText("❌ interval_unit is required"), nil
		}

		t := task.Task{
			Name:         name,
			IntervalUnit: task.IntervalUnit(unit),
			Active:       true,
		}

		if qty, ok := args["interval_qty"].(float64); ok {
			t.IntervalQty = int(qty)
		}
		if category, ok := args["category"].(string); ok {
			t.Category = category
		}
		if behavior, ok := args["overdue_behavior"].(string); ok && behavior != "" {
			t.OverdueBehavior = task.OverdueBehavior(behavior)
		}

		if raw, ok := args["next_due"].(string); ok && raw != "" {
			due, err := task.ParseDate(raw)
			if err != nil {
				return mcp.NewToolResultText(fmt.Sprintf("❌ invalid next_due: %v", err)), nil
			}
			t.NextDue = due
		} else if t.IntervalUnit != task.UnitAdhoc {
			t.NextDue = task.Today()
		}

		created, err := tr.Create(t)
		if err != nil {
			return errorText(err), nil
		}

		msg := fmt.Sprintf("✅ Created **%s** (%s), %s", created.Name, created.ID, describeSchedule(&created))
		if !created.NextDue.IsZero() {
			msg += fmt.Sprintf(", first due %s", created.NextDue)
		}
		return mcp.NewToolResultText(msg), nil
	}
}

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/cadence/internal/task"
	"github.com/kolapsis/cadence/internal/tracker"
)

// GetTask returns a handler that shows one task in full.
func GetTask(tr *tracker.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		id, ok := args["task_id"].(string)
		if !ok || id == "" {
			return mcp.NewToolResultText("❌ task_id is required"), nil
		}

		t, err := tr.Get(id)
		if err != nil {
			return errorText(err), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s **%s** (%s)\n\n", unitIcon(t.IntervalUnit), t.Name, t.ID)
		fmt.Fprintf(&sb, "Schedule: %s\n", describeSchedule(&t))
		if t.Category != "" {
			fmt.Fprintf(&sb, "Category: %s\n", t.Category)
		}
		if t.Description != "" {
			fmt.Fprintf(&sb, "Description: %s\n", t.Description)
		}
		if t.Difficulty != "" {
			fmt.Fprintf(&sb, "Difficulty: %s\n", t.Difficulty)
		}
		if t.EstimateMinutes > 0 {
			fmt.Fprintf(&sb, "Estimate: %d min\n", t.EstimateMinutes)
		}
		if len(t.SpecificDays) > 0 {
			fmt.Fprintf(&sb, "Only on: %s\n", joinWeekdays(t.SpecificDays))
		}
		if len(t.ExcludedDays) > 0 {
			fmt.Fprintf(&sb, "Never on: %s\n", joinWeekdays(t.ExcludedDays))
		}
		if t.OverdueBehavior != "" {
			fmt.Fprintf(&sb, "When overdue: %s\n", t.OverdueBehavior)
		}
		if !t.NextDue.IsZero() {
			fmt.Fprintf(&sb, "Next due: %s\n", t.NextDue)
		}
		if !t.LastCompleted.IsZero() {
			fmt.Fprintf(&sb, "Last completed: %s (streak %d)\n", t.LastCompleted, t.CompletionStreak)
		}
		if len(t.ParentIDs) > 0 {
			fmt.Fprintf(&sb, "Parents: %s\n", strings.Join(t.ParentIDs, ", "))
		}
		if len(t.Triggers) > 0 {
			fmt.Fprintf(&sb, "Triggers: %s\n", strings.Join(t.Triggers, ", "))
		}
		if !t.Active {
			sb.WriteString("Status: inactive\n")
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func joinWeekdays(days []task.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return strings.Join(names, ", ")
}

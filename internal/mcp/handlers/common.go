// Package handlers implements the MCP tool handlers for the task tracker.
package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kolapsis/cadence/internal/store"
	"github.com/kolapsis/cadence/internal/task"
)

// argDate reads an optional YYYY-MM-DD argument, defaulting to today.
func argDate(args map[string]any, name string) (task.Date, error) {
	raw, ok := args[name].(string)
	if !ok || raw == "" {
		return task.Today(), nil
	}
	return task.ParseDate(raw)
}

// errorText renders a domain error as a tool result instead of a protocol
// failure, so the client sees what went wrong.
func errorText(err error) *mcp.CallToolResult {
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultText("❌ Task not found.")
	}
	return mcp.NewToolResultText(fmt.Sprintf("❌ %v", err))
}

func unitIcon(u task.IntervalUnit) string {
	switch u {
	case task.UnitDay:
		return "📆"
	case task.UnitWeek:
		return "🗓️"
	case task.UnitAdhoc:
		return "⚡"
	default:
		return "❓"
	}
}

// describeSchedule renders the recurrence rule in one short phrase.
func describeSchedule(t *task.Task) string {
	switch t.IntervalUnit {
	case task.UnitAdhoc:
		return "ad-hoc"
	case task.UnitDay:
		if t.IntervalQty == 1 {
			return "every day"
		}
		return fmt.Sprintf("every %d days", t.IntervalQty)
	case task.UnitWeek:
		if t.IntervalQty == 1 {
			return "every week"
		}
		return fmt.Sprintf("every %d weeks", t.IntervalQty)
	default:
		return string(t.IntervalUnit)
	}
}

// writeTaskLine appends the one-line summary used by the list tools.
func writeTaskLine(sb *strings.Builder, t *task.Task, indent string) {
	fmt.Fprintf(sb, "%s%s **%s** (%s) — %s", indent, unitIcon(t.IntervalUnit), t.Name, t.ID, describeSchedule(t))
	if !t.NextDue.IsZero() {
		fmt.Fprintf(sb, " | due %s", t.NextDue)
	}
	if t.CompletionStreak > 0 {
		fmt.Fprintf(sb, " | streak %d", t.CompletionStreak)
	}
	if !t.Active {
		sb.WriteString(" | inactive")
	}
	sb.WriteString("\n")
}

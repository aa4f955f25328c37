package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/cadence/internal/mcp/handlers"
)

func registerTools(s *server.MCPServer, deps *Deps) {
	// list_due_tasks — What is due today (or on a given date)
	s.AddTool(
		mcp.NewTool("list_due_tasks",
			mcp.WithDescription("List tasks due on or before a date, grouped into parents and children. Defaults to today."),
			mcp.WithString("date",
				mcp.Description("Reference date in YYYY-MM-DD format. Defaults to today."),
			),
		),
		handlers.ListDueTasks(deps.Tracker),
	)

	// list_tasks — Full working set
	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List every tracked task with its schedule and state, including inactive ones."),
			mcp.WithString("category",
				mcp.Description("Only show tasks in this category"),
			),
		),
		handlers.ListTasks(deps.Tracker),
	)

	// get_task — Inspect one task
	s.AddTool(
		mcp.NewTool("get_task",
			mcp.WithDescription("Show the full definition and state of one task."),
			mcp.WithString("task_id",
				mcp.Required(),
				mcp.Description("The task identifier"),
			),
		),
		handlers.GetTask(deps.Tracker),
	)

	// create_task — Add a recurring or ad-hoc task
	s.AddTool(
		mcp.NewTool("create_task",
			mcp.WithDescription("Create a new task. DAY/WEEK tasks recur every interval_qty units after completion; ADHOC tasks only become due when triggered or activated."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Short task name"),
			),
			mcp.WithString("interval_unit",
				mcp.Required(),
				mcp.Description("How the task recurs"),
				mcp.Enum("DAY", "WEEK", "ADHOC"),
			),
			mcp.WithNumber("interval_qty",
				mcp.Description("Number of units between occurrences (required for DAY/WEEK)"),
			),
			mcp.WithString("category",
				mcp.Description("Free-form grouping label"),
			),
			mcp.WithString("next_due",
				mcp.Description("First due date in YYYY-MM-DD format. Defaults to today for DAY/WEEK tasks."),
			),
			mcp.WithString("overdue_behavior",
				mcp.Description("How a late completion reschedules the task (default POSTPONE)"),
				mcp.Enum("POSTPONE", "SKIP_TO_NEXT"),
			),
		),
		handlers.CreateTask(deps.Tracker),
	)

	// complete_task — Record a completion
	s.AddTool(
		mcp.NewTool("complete_task",
			mcp.WithDescription("Mark a task complete. Advances its next due date, updates the streak, and activates any triggered tasks."),
			mcp.WithString("task_id",
				mcp.Required(),
				mcp.Description("The task identifier"),
			),
			mcp.WithString("date",
				mcp.Description("Completion date in YYYY-MM-DD format. Defaults to today."),
			),
		),
		handlers.CompleteTask(deps.Tracker),
	)

	// activate_task — Schedule an ad-hoc task by hand
	s.AddTool(
		mcp.NewTool("activate_task",
			mcp.WithDescription("Manually schedule a task (typically ADHOC) to become due on a date, snapped to its weekday and exclusion filters."),
			mcp.WithString("task_id",
				mcp.Required(),
				mcp.Description("The task identifier"),
			),
			mcp.WithString("date",
				mcp.Description("Target date in YYYY-MM-DD format. Defaults to today."),
			),
		),
		handlers.ActivateTask(deps.Tracker),
	)

	// delete_task — Remove a task
	s.AddTool(
		mcp.NewTool("delete_task",
			mcp.WithDescription("Delete a task permanently. References from other tasks are left dangling and ignored."),
			mcp.WithString("task_id",
				mcp.Required(),
				mcp.Description("The task identifier"),
			),
		),
		handlers.DeleteTask(deps.Tracker),
	)

	// export_tasks — Full JSON snapshot
	s.AddTool(
		mcp.NewTool("export_tasks",
			mcp.WithDescription("Export every task as a versioned JSON document suitable for backup or import elsewhere."),
		),
		handlers.ExportTasks(deps.Exporter),
	)
}

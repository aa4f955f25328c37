package task

import "fmt"

// ConfigError reports malformed scheduling fields on a single task.
// It is fatal to the operation that hit it and must not touch other tasks.
type ConfigError struct {
	TaskID string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("task configuration: %s", e.Reason)
	}
	return fmt.Sprintf("task %s configuration: %s", e.TaskID, e.Reason)
}

// SchedulingError reports an over-constrained task whose exclusion rules left
// no valid candidate date within the bounded search window. The task is left
// unmodified by the caller.
type SchedulingError struct {
	TaskID       string
	From         Date
	SearchedDays int
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("task %s: no valid due date within %d days of %s (exclusions too strict)",
		e.TaskID, e.SearchedDays, e.From)
}

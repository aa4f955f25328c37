package task

import "log/slog"

// Activation records a task made newly due by a trigger edge.
type Activation struct {
	TaskID  string `json:"taskId"`
	NextDue Date   `json:"nextDue"`
}

// ResolveTriggers determines which tasks become due because the given task
// was completed. Each target in completed.Triggers that resolves within the
// snapshot is activated on the completion date, snapped forward through the
// target's own weekday and exclusion filters.
//
// Resolution is strictly one hop: completing A activates B, but B's own
// triggers fire only when B itself is completed. Dangling targets are logged
// and skipped, never fatal.
func ResolveTriggers(completed *Task, all map[string]Task, completion Date) []Activation {
	if len(completed.Triggers) == 0 {
		return nil
	}

	activations := make([]Activation, 0, len(completed.Triggers))
	for _, id := range completed.Triggers {
		target, ok := all[id]
		if !ok {
			slog.Debug("skipping dangling trigger target",
				"task_id", completed.ID,
				"target_id", id)
			continue
		}

		due, err := NextValidOn(&target, completion)
		if err != nil {
			slog.Warn("trigger target has no valid activation date",
				"task_id", completed.ID,
				"target_id", id,
				"error", err)
			continue
		}

		activations = append(activations, Activation{TaskID: id, NextDue: due})
	}
	return activations
}

// Package interchange implements the JSON import/export format and the merge
// engine that reconciles an external task set with the local store.
package interchange

import (
	"time"

	"github.com/kolapsis/cadence/internal/task"
)

// SchemaVersion is the only payload version this build reads and writes.
// There is no cross-version migration; a mismatch is a VersionError.
const SchemaVersion = "1.0"

// Payload is the interchange envelope.
type Payload struct {
	Version    string     `json:"version"`
	ExportDate time.Time  `json:"exportDate"`
	Tasks      []TaskJSON `json:"tasks"`
}

// TaskJSON is the wire form of a task. Optional collections serialize as
// null (nil slice) rather than an empty array, so "not configured" and
// "configured empty" stay distinguishable.
type TaskJSON struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category,omitempty"`
	Description     string `json:"description,omitempty"`
	Difficulty      string `json:"difficulty,omitempty"`
	EstimateMinutes int    `json:"estimateMinutes,omitempty"`

	Tags []string `json:"tags"`

	IntervalUnit       string         `json:"intervalUnit"`
	IntervalQty        int            `json:"intervalQty"`
	SpecificDaysOfWeek []task.Weekday `json:"specificDaysOfWeek"`
	ExcludedDaysOfWeek []task.Weekday `json:"excludedDaysOfWeek"`
	ExcludedDates      []task.Date    `json:"excludedDates"`
	OverdueBehavior    string         `json:"overdueBehavior,omitempty"`

	NextDue          task.Date `json:"nextDue"`
	LastCompleted    task.Date `json:"lastCompleted"`
	CompletionStreak int       `json:"completionStreak"`
	Active           bool      `json:"active"`

	ParentTaskIDs            []string `json:"parentTaskIds"`
	ChildOrder               int      `json:"childOrder,omitempty"`
	RequiresManualCompletion bool     `json:"requiresManualCompletion"`
	TriggeredByTaskIDs       []string `json:"triggeredByTaskIds"`
	TriggersTaskIDs          []string `json:"triggersTaskIds"`
	RequiresInventory        bool     `json:"requiresInventory"`
	DeleteAfterCompletion    bool     `json:"deleteAfterCompletion"`
}

// toWire converts a domain task to its wire form.
func toWire(t *task.Task) TaskJSON {
	return TaskJSON{
		ID:                       t.ID,
		Name:                     t.Name,
		Category:                 t.Category,
		Description:              t.Description,
		Difficulty:               string(t.Difficulty),
		EstimateMinutes:          t.EstimateMinutes,
		Tags:                     t.Tags,
		IntervalUnit:             string(t.IntervalUnit),
		IntervalQty:              t.IntervalQty,
		SpecificDaysOfWeek:       t.SpecificDays,
		ExcludedDaysOfWeek:       t.ExcludedDays,
		ExcludedDates:            t.ExcludedDates,
		OverdueBehavior:          string(t.OverdueBehavior),
		NextDue:                  t.NextDue,
		LastCompleted:            t.LastCompleted,
		CompletionStreak:         t.CompletionStreak,
		Active:                   t.Active,
		ParentTaskIDs:            t.ParentIDs,
		ChildOrder:               t.ChildOrder,
		RequiresManualCompletion: t.RequiresManualCompletion,
		TriggeredByTaskIDs:       t.TriggeredBy,
		TriggersTaskIDs:          t.Triggers,
		RequiresInventory:        t.RequiresInventory,
		DeleteAfterCompletion:    t.DeleteAfterCompletion,
	}
}

// fromWire converts a wire task back to the domain form.
func fromWire(w *TaskJSON) task.Task {
	return task.Task{
		ID:                       w.ID,
		Name:                     w.Name,
		Category:                 w.Category,
		Description:              w.Description,
		Difficulty:               task.Difficulty(w.Difficulty),
		EstimateMinutes:          w.EstimateMinutes,
		Tags:                     w.Tags,
		IntervalUnit:             task.IntervalUnit(w.IntervalUnit),
		IntervalQty:              w.IntervalQty,
		SpecificDays:             w.SpecificDaysOfWeek,
		ExcludedDays:             w.ExcludedDaysOfWeek,
		ExcludedDates:            w.ExcludedDates,
		OverdueBehavior:          task.OverdueBehavior(w.OverdueBehavior),
		NextDue:                  w.NextDue,
		LastCompleted:            w.LastCompleted,
		CompletionStreak:         w.CompletionStreak,
		Active:                   w.Active,
		ParentIDs:                w.ParentTaskIDs,
		ChildOrder:               w.ChildOrder,
		RequiresManualCompletion: w.RequiresManualCompletion,
		TriggeredBy:              w.TriggeredByTaskIDs,
		Triggers:                 w.TriggersTaskIDs,
		RequiresInventory:        w.RequiresInventory,
		DeleteAfterCompletion:    w.DeleteAfterCompletion,
	}
}

// Package tracker orchestrates the scheduling engine against the store: it
// owns the read-snapshot-compute-apply cycle for completion events and the
// due-today query that feeds the display forest.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kolapsis/cadence/internal/notify"
	"github.com/kolapsis/cadence/internal/store"
	"github.com/kolapsis/cadence/internal/task"
)

// Tracker handles task lifecycle: creation, completion, activation, deletion.
type Tracker struct {
	store store.Store
	hub   *notify.Hub
}

// New creates a Tracker. The hub may be nil when notifications are disabled.
func New(s store.Store, hub *notify.Hub) *Tracker {
	return &Tracker{store: s, hub: hub}
}

// CompletionResult reports everything one completion event changed.
type CompletionResult struct {
	// Task is the advanced task (its final state even when removed).
	Task task.Task
	// Removed reports a DeleteAfterCompletion task that left the store.
	Removed bool
	// Activated lists dependents made newly due by trigger edges.
	Activated []task.Activation
	// AutoCompleted lists parents completed because their last bound child
	// finished, in completion order.
	AutoCompleted []string
}

// DueOn returns the display forest of tasks due on or before the given date.
// The store is read once; grouping happens on that single snapshot.
func (tr *Tracker) DueOn(date task.Date) ([]task.Item, error) {
	due, err := tr.store.GetDueOnOrBefore(date)
	if err != nil {
		return nil, fmt.Errorf("querying due tasks: %w", err)
	}
	return task.Group(due), nil
}

// Complete records one completion event: the task is advanced, its trigger
// targets are activated, and both are applied to the store as a single atomic
// unit. Parents set to auto-complete are then completed the same way, one
// event per parent, walking up until no parent qualifies.
func (tr *Tracker) Complete(id string, date task.Date) (*CompletionResult, error) {
	snapshot, err := tr.snapshot()
	if err != nil {
		return nil, err
	}

	t, ok := snapshot[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	result, err := tr.completeOne(&t, snapshot, date)
	if err != nil {
		return nil, err
	}

	// Auto-complete parents whose every bound child is now done for the day.
	pending := append([]string(nil), t.ParentIDs...)
	for len(pending) > 0 {
		pid := pending[0]
		pending = pending[1:]

		parent, ok := snapshot[pid]
		if !ok || parent.RequiresManualCompletion || !parent.IsDueOn(date) {
			continue
		}
		if tr.anyChildStillDue(&parent, snapshot, date) {
			continue
		}

		parentResult, err := tr.completeOne(&parent, snapshot, date)
		if err != nil {
			slog.Warn("parent auto-completion failed",
				"parent_id", pid,
				"error", err)
			continue
		}
		result.AutoCompleted = append(result.AutoCompleted, pid)
		result.Activated = append(result.Activated, parentResult.Activated...)
		pending = append(pending, parent.ParentIDs...)
	}

	return result, nil
}

// completeOne advances a single task and applies it together with its
// trigger activations. The snapshot is updated in place so follow-up
// completions in the same user action see the new state.
func (tr *Tracker) completeOne(t *task.Task, snapshot map[string]task.Task, date task.Date) (*CompletionResult, error) {
	adv, err := task.Advance(*t, date)
	if err != nil {
		return nil, err
	}

	activations := task.ResolveTriggers(t, snapshot, date)
	activated := make([]task.Task, 0, len(activations))
	for _, act := range activations {
		target := snapshot[act.TaskID]
		target.NextDue = act.NextDue
		activated = append(activated, target)
		snapshot[act.TaskID] = target
	}

	if err := tr.store.ApplyCompletion(store.Completion{
		Updated:   adv.Task,
		Remove:    adv.Remove,
		Activated: activated,
	}); err != nil {
		return nil, fmt.Errorf("applying completion of %s: %w", t.ID, err)
	}

	if adv.Remove {
		delete(snapshot, t.ID)
	} else {
		snapshot[t.ID] = adv.Task
	}

	slog.Info("task completed",
		"task_id", t.ID,
		"next_due", adv.Task.NextDue.String(),
		"streak", adv.Task.CompletionStreak,
		"removed", adv.Remove,
		"activated", len(activated))

	if adv.Remove {
		tr.emit(notify.Event{
			Type:     "task.removed",
			TaskID:   t.ID,
			TaskName: t.Name,
			Message:  fmt.Sprintf("%s completed and removed", t.Name),
		})
	} else {
		tr.emit(notify.Event{
			Type:     "task.completed",
			TaskID:   t.ID,
			TaskName: t.Name,
			Message:  fmt.Sprintf("%s completed (streak %d)", t.Name, adv.Task.CompletionStreak),
		})
	}
	for _, a := range activated {
		tr.emit(notify.Event{
			Type:     "task.activated",
			TaskID:   a.ID,
			TaskName: a.Name,
			Message:  fmt.Sprintf("%s is now due (%s)", a.Name, a.NextDue),
		})
	}

	return &CompletionResult{
		Task:      adv.Task,
		Removed:   adv.Remove,
		Activated: activations,
	}, nil
}

// anyChildStillDue reports whether the parent still has a bound child due on
// the given date.
func (tr *Tracker) anyChildStillDue(parent *task.Task, snapshot map[string]task.Task, date task.Date) bool {
	for _, t := range snapshot {
		if t.ID == parent.ID {
			continue
		}
		for _, pid := range t.ParentIDs {
			if pid == parent.ID && t.IsDueOn(date) {
				return true
			}
		}
	}
	return false
}

// Activate manually schedules a task (typically ADHOC) on the given date,
// snapped through the task's own weekday and exclusion filters.
func (tr *Tracker) Activate(id string, date task.Date) (task.Task, error) {
	t, err := tr.store.Get(id)
	if err != nil {
		return task.Task{}, err
	}

	due, err := task.NextValidOn(&t, date)
	if err != nil {
		return task.Task{}, err
	}
	t.NextDue = due

	if err := tr.store.Update(t); err != nil {
		return task.Task{}, fmt.Errorf("activating task %s: %w", id, err)
	}

	slog.Info("task activated", "task_id", id, "next_due", due.String())
	tr.emit(notify.Event{
		Type:     "task.activated",
		TaskID:   id,
		TaskName: t.Name,
		Message:  fmt.Sprintf("%s is now due (%s)", t.Name, due),
	})
	return t, nil
}

// Create validates and persists a new task, returning it with its assigned
// identifier.
func (tr *Tracker) Create(t task.Task) (task.Task, error) {
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}

	id, err := tr.store.Create(t)
	if err != nil {
		return task.Task{}, fmt.Errorf("creating task: %w", err)
	}

	created, err := tr.store.Get(id)
	if err != nil {
		return task.Task{}, fmt.Errorf("reading back created task: %w", err)
	}

	slog.Info("task created", "task_id", id, "name", created.Name)
	return created, nil
}

// Update validates and overwrites an existing task.
func (tr *Tracker) Update(t task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return tr.store.Update(t)
}

// Get returns a task by identifier.
func (tr *Tracker) Get(id string) (task.Task, error) {
	return tr.store.Get(id)
}

// List returns a full snapshot of the store.
func (tr *Tracker) List() ([]task.Task, error) {
	return tr.store.GetAll()
}

// Delete removes a task. References held by other tasks are left dangling on
// purpose; the engine degrades them to "absent" wherever they are read.
func (tr *Tracker) Delete(id string) error {
	t, err := tr.store.Get(id)
	if err != nil {
		return err
	}

	if err := tr.store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("deleting task %s: %w", id, err)
	}

	slog.Info("task deleted", "task_id", id)
	tr.emit(notify.Event{
		Type:     "task.removed",
		TaskID:   id,
		TaskName: t.Name,
		Message:  fmt.Sprintf("%s deleted", t.Name),
	})
	return nil
}

func (tr *Tracker) snapshot() (map[string]task.Task, error) {
	all, err := tr.store.GetAll()
	if err != nil {
		return nil, fmt.Errorf("snapshotting store: %w", err)
	}
	index := make(map[string]task.Task, len(all))
	for _, t := range all {
		index[t.ID] = t
	}
	return index, nil
}

func (tr *Tracker) emit(event notify.Event) {
	if tr.hub != nil {
		tr.hub.Notify(event)
	}
}

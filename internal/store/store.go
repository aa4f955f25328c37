package store

import (
	"errors"

	"github.com/kolapsis/cadence/internal/task"
)

// ErrNotFound is returned by lookups for identifiers that are not in the
// store. Callers probing for existence (e.g. import conflict detection)
// recover from it locally.
var ErrNotFound = errors.New("task not found")

// Store is the persistence boundary for the tracker core.
// Defined at the consumer side per Go conventions; the engine performs no
// other I/O.
type Store interface {
	// Get returns the task with the given identifier, or ErrNotFound.
	Get(id string) (task.Task, error)

	// GetAll returns a full snapshot of every task, active or not, in a
	// deterministic order (creation time, then identifier).
	GetAll() ([]task.Task, error)

	// Create persists a new task. A blank identifier is assigned by the
	// store; the assigned identifier is returned either way.
	Create(t task.Task) (string, error)

	// Update overwrites the record at the task's identifier.
	Update(t task.Task) error

	// Delete removes the task. Relationship fields of other tasks are left
	// alone; their references simply stop resolving.
	Delete(id string) error

	// GetDueOnOrBefore returns active tasks whose due date is on or before
	// the given date, in a deterministic order.
	GetDueOnOrBefore(d task.Date) ([]task.Task, error)

	// ApplyCompletion persists one completion event atomically: the advanced
	// (or removed) task together with every activated dependent. Either all
	// of it lands or none of it does.
	ApplyCompletion(c Completion) error

	Close() error
}

// Completion is the unit of work produced by one completion event.
type Completion struct {
	// Updated is the task after recurrence advancement.
	Updated task.Task
	// Remove deletes the task instead of updating it (DeleteAfterCompletion).
	Remove bool
	// Activated holds trigger targets with their new due dates applied.
	Activated []task.Task
}

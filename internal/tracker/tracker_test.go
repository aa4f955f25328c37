package tracker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolapsis/cadence/internal/store"
	"github.com/kolapsis/cadence/internal/task"
)

func newTestTracker(t *testing.T) (*Tracker, store.Store) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, nil), s
}

func daily(id, name string, due task.Date) task.Task {
	return task.Task{
		ID:           id,
		Name:         name,
		IntervalUnit: task.UnitDay,
		IntervalQty:  1,
		NextDue:      due,
		Active:       true,
	}
}

func mustCreate(t *testing.T, tr *Tracker, tk task.Task) task.Task {
	t.Helper()
	created, err := tr.Create(tk)
	require.NoError(t, err)
	return created
}

func TestCompleteAdvancesAndPersists(t *testing.T) {
	t.Parallel()
	tr, s := newTestTracker(t)

	due := task.NewDate(2025, 1, 5)
	mustCreate(t, tr, daily("wash", "Wash dishes", due))

	result, err := tr.Complete("wash", due)
	require.NoError(t, err)
	assert.False(t, result.Removed)
	assert.Equal(t, task.NewDate(2025, 1, 6), result.Task.NextDue)
	assert.Equal(t, 1, result.Task.CompletionStreak)

	stored, err := s.Get("wash")
	require.NoError(t, err)
	assert.Equal(t, task.NewDate(2025, 1, 6), stored.NextDue)
	assert.Equal(t, due, stored.LastCompleted)
}

func TestCompleteUnknownTask(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)

	_, err := tr.Complete("ghost", task.NewDate(2025, 1, 5))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompleteActivatesTriggers(t *testing.T) {
	t.Parallel()
	tr, s := newTestTracker(t)

	due := task.NewDate(2025, 1, 5)
	mow := daily("mow", "Mow lawn", due)
	mow.Triggers = []string{"edge"}
	mustCreate(t, tr, mow)

	edge := task.Task{
		ID:           "edge",
		Name:         "Edge lawn",
		IntervalUnit: task.UnitAdhoc,
		Active:       true,
	}
	mustCreate(t, tr, edge)

	result, err := tr.Complete("mow", due)
	require.NoError(t, err)
	require.Len(t, result.Activated, 1)
	assert.Equal(t, "edge", result.Activated[0].TaskID)
	assert.Equal(t, due, result.Activated[0].NextDue)

	stored, err := s.Get("edge")
	require.NoError(t, err)
	assert.Equal(t, due, stored.NextDue)
}

func TestCompleteRemovesOneShot(t *testing.T) {
	t.Parallel()
	tr, s := newTestTracker(t)

	due := task.NewDate(2025, 1, 5)
	oneShot := daily("once", "Return library book", due)
	oneShot.DeleteAfterCompletion = true
	mustCreate(t, tr, oneShot)

	result, err := tr.Complete("once", due)
	require.NoError(t, err)
	assert.True(t, result.Removed)

	_, err = s.Get("once")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestParentAutoCompletion(t *testing.T) {
	t.Parallel()
	tr, s := newTestTracker(t)

	due := task.NewDate(2025, 1, 5)
	mustCreate(t, tr, daily("routine", "Morning routine", due))

	brush := daily("brush", "Brush teeth", due)
	brush.ParentIDs = []string{"routine"}
	mustCreate(t, tr, brush)

	shower := daily("shower", "Shower", due)
	shower.ParentIDs = []string{"routine"}
	mustCreate(t, tr, shower)

	// First child done: the second is still due, so the parent waits.
	result, err := tr.Complete("brush", due)
	require.NoError(t, err)
	assert.Empty(t, result.AutoCompleted)

	// Last child done: the parent auto-completes.
	result, err = tr.Complete("shower", due)
	require.NoError(t, err)
	assert.Equal(t, []string{"routine"}, result.AutoCompleted)

	stored, err := s.Get("routine")
	require.NoError(t, err)
	assert.Equal(t, task.NewDate(2025, 1, 6), stored.NextDue)
	assert.Equal(t, 1, stored.CompletionStreak)
}

func TestParentAutoCompletionRespectsManualFlag(t *testing.T) {
	t.Parallel()
	tr, s := newTestTracker(t)

	due := task.NewDate(2025, 1, 5)
	parent := daily("chores", "Weekend chores", due)
	parent.RequiresManualCompletion = true
	mustCreate(t, tr, parent)

	child := daily("vacuum", "Vacuum", due)
	child.ParentIDs = []string{"chores"}
	mustCreate(t, tr, child)

	result, err := tr.Complete("vacuum", due)
	require.NoError(t, err)
	assert.Empty(t, result.AutoCompleted)

	stored, err := s.Get("chores")
	require.NoError(t, err)
	assert.Equal(t, due, stored.NextDue)
}

func TestParentAutoCompletionChainsUpward(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)

	due := task.NewDate(2025, 1, 5)
	mustCreate(t, tr, daily("top", "House upkeep", due))

	mid := daily("mid", "Kitchen", due)
	mid.ParentIDs = []string{"top"}
	mustCreate(t, tr, mid)

	leaf := daily("leaf", "Wipe counters", due)
	leaf.ParentIDs = []string{"mid"}
	mustCreate(t, tr, leaf)

	result, err := tr.Complete("leaf", due)
	require.NoError(t, err)
	assert.Equal(t, []string{"mid", "top"}, result.AutoCompleted)
}

func TestParentNotDueDoesNotAutoComplete(t *testing.T) {
	t.Parallel()
	tr, s := newTestTracker(t)

	due := task.NewDate(2025, 1, 5)
	parent := daily("later", "Later project", task.NewDate(2025, 2, 1))
	mustCreate(t, tr, parent)

	child := daily("step", "First step", due)
	child.ParentIDs = []string{"later"}
	mustCreate(t, tr, child)

	result, err := tr.Complete("step", due)
	require.NoError(t, err)
	assert.Empty(t, result.AutoCompleted)

	stored, err := s.Get("later")
	require.NoError(t, err)
	assert.Equal(t, task.NewDate(2025, 2, 1), stored.NextDue)
}

func TestActivateAdhocTask(t *testing.T) {
	t.Parallel()
	tr, s := newTestTracker(t)

	mustCreate(t, tr, task.Task{
		ID:           "sharpen",
		Name:         "Sharpen knives",
		IntervalUnit: task.UnitAdhoc,
		Active:       true,
	})

	date := task.NewDate(2025, 1, 5)
	activated, err := tr.Activate("sharpen", date)
	require.NoError(t, err)
	assert.Equal(t, date, activated.NextDue)

	stored, err := s.Get("sharpen")
	require.NoError(t, err)
	assert.Equal(t, date, stored.NextDue)
}

func TestActivateSnapsToAllowedWeekday(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)

	adhoc := task.Task{
		ID:           "laundry",
		Name:         "Laundry",
		IntervalUnit: task.UnitAdhoc,
		SpecificDays: []task.Weekday{task.Weekday(6)}, // Saturday
		Active:       true,
	}
	mustCreate(t, tr, adhoc)

	// 2025-01-06 is a Monday; the next Saturday is 2025-01-11.
	activated, err := tr.Activate("laundry", task.NewDate(2025, 1, 6))
	require.NoError(t, err)
	assert.Equal(t, task.NewDate(2025, 1, 11), activated.NextDue)
}

func TestDueOnGroupsHierarchy(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)

	due := task.NewDate(2025, 1, 5)
	mustCreate(t, tr, daily("parent", "Parent", due))

	child := daily("child", "Child", due)
	child.ParentIDs = []string{"parent"}
	mustCreate(t, tr, child)

	mustCreate(t, tr, daily("solo", "Solo", due))
	mustCreate(t, tr, daily("future", "Future", task.NewDate(2025, 6, 1)))

	items, err := tr.DueOn(due)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := make(map[string]task.Item, len(items))
	for _, item := range items {
		byID[item.Task.ID] = item
	}
	require.Contains(t, byID, "parent")
	require.Contains(t, byID, "solo")
	require.Len(t, byID["parent"].Children, 1)
	assert.Equal(t, "child", byID["parent"].Children[0].ID)
	assert.True(t, byID["parent"].IsParent)
}

func TestCreateValidates(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)

	_, err := tr.Create(task.Task{IntervalUnit: task.UnitDay, IntervalQty: 1})
	var cfgErr *task.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCreateAssignsID(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)

	created := mustCreate(t, tr, task.Task{
		Name:         "No ID yet",
		IntervalUnit: task.UnitAdhoc,
		Active:       true,
	})
	assert.NotEmpty(t, created.ID)
}

func TestDeleteUnknownTask(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)

	err := tr.Delete("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

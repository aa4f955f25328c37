package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(tasks ...Task) map[string]Task {
	m := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}

func TestResolveTriggers_ActivatesTargetOnCompletionDate(t *testing.T) {
	t.Parallel()

	mow := named("task-mow", "mow the lawn")
	mow.Triggers = []string{"task-sharpen"}
	sharpen := named("task-sharpen", "sharpen mower blades")
	sharpen.IntervalUnit = UnitAdhoc
	sharpen.IntervalQty = 0

	completion := NewDate(2025, time.June, 10)
	acts := ResolveTriggers(&mow, snapshot(mow, sharpen), completion)

	require.Len(t, acts, 1)
	assert.Equal(t, "task-sharpen", acts[0].TaskID)
	assert.Equal(t, completion, acts[0].NextDue)
}

func TestResolveTriggers_OverridesExistingDueDate(t *testing.T) {
	t.Parallel()

	a := named("task-a", "a")
	a.Triggers = []string{"task-b"}
	b := named("task-b", "b")
	b.NextDue = NewDate(2025, time.December, 25)

	completion := NewDate(2025, time.June, 1)
	acts := ResolveTriggers(&a, snapshot(a, b), completion)

	require.Len(t, acts, 1)
	assert.Equal(t, completion, acts[0].NextDue, "activation replaces the current due date")
}

func TestResolveTriggers_RespectsTargetFilters(t *testing.T) {
	t.Parallel()

	a := named("task-a", "a")
	a.Triggers = []string{"task-b"}
	b := named("task-b", "b")
	b.SpecificDays = []Weekday{Weekday(time.Saturday)}

	// 2025-06-10 is a Tuesday; next Saturday is 06-14.
	acts := ResolveTriggers(&a, snapshot(a, b), NewDate(2025, time.June, 10))

	require.Len(t, acts, 1)
	assert.Equal(t, NewDate(2025, time.June, 14), acts[0].NextDue)
}

func TestResolveTriggers_DanglingTargetsSilentlySkipped(t *testing.T) {
	t.Parallel()

	a := named("task-a", "a")
	a.Triggers = []string{"task-gone", "task-b"}
	b := named("task-b", "b")

	acts := ResolveTriggers(&a, snapshot(a, b), NewDate(2025, time.June, 10))

	require.Len(t, acts, 1)
	assert.Equal(t, "task-b", acts[0].TaskID)
}

func TestResolveTriggers_SingleHopOnly(t *testing.T) {
	t.Parallel()

	a := named("task-a", "a")
	a.Triggers = []string{"task-b"}
	b := named("task-b", "b")
	b.Triggers = []string{"task-c"}
	c := named("task-c", "c")

	acts := ResolveTriggers(&a, snapshot(a, b, c), NewDate(2025, time.June, 10))

	require.Len(t, acts, 1)
	assert.Equal(t, "task-b", acts[0].TaskID, "completing A must not activate C transitively")
}

func TestResolveTriggers_NoTriggers(t *testing.T) {
	t.Parallel()

	a := named("task-a", "a")
	assert.Empty(t, ResolveTriggers(&a, snapshot(a), NewDate(2025, time.June, 10)))
}

func TestResolveTriggers_OverConstrainedTargetSkipped(t *testing.T) {
	t.Parallel()

	a := named("task-a", "a")
	a.Triggers = []string{"task-b"}
	b := named("task-b", "b")
	b.ExcludedDays = []Weekday{
		Weekday(time.Sunday), Weekday(time.Monday), Weekday(time.Tuesday),
		Weekday(time.Wednesday), Weekday(time.Thursday), Weekday(time.Friday),
		Weekday(time.Saturday),
	}

	acts := ResolveTriggers(&a, snapshot(a, b), NewDate(2025, time.June, 10))
	assert.Empty(t, acts, "a target with no valid activation date is skipped, not fatal")
}

package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(id, name string) Task {
	return Task{ID: id, Name: name, IntervalUnit: UnitDay, IntervalQty: 1, Active: true}
}

func flatten(items []Item) []string {
	var ids []string
	for _, it := range items {
		ids = append(ids, it.Task.ID)
		for _, c := range it.Children {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func TestGroup_ChildrenNestUnderParentSortedByChildOrder(t *testing.T) {
	t.Parallel()

	parent := named("task-p", "clean the kitchen")
	childA := named("task-a", "wipe counters")
	childA.ParentIDs = []string{"task-p"}
	childA.ChildOrder = 2
	childB := named("task-b", "empty dishwasher")
	childB.ParentIDs = []string{"task-p"}
	childB.ChildOrder = 1

	items := Group([]Task{parent, childA, childB})

	require.Len(t, items, 1)
	assert.Equal(t, "task-p", items[0].Task.ID)
	assert.True(t, items[0].IsParent)
	require.Len(t, items[0].Children, 2)
	assert.Equal(t, "task-b", items[0].Children[0].ID)
	assert.Equal(t, "task-a", items[0].Children[1].ID)
}

func TestGroup_OrphanSurfacesTopLevel(t *testing.T) {
	t.Parallel()

	orphan := named("task-o", "water the ferns")
	orphan.ParentIDs = []string{"task-gone"}

	items := Group([]Task{orphan})

	require.Len(t, items, 1)
	assert.Equal(t, "task-o", items[0].Task.ID)
	assert.Empty(t, items[0].Children)
	assert.False(t, items[0].IsParent)
}

func TestGroup_MultiParent_OnlyFirstResolvableParentGetsTheChild(t *testing.T) {
	t.Parallel()

	p1 := named("task-p1", "morning routine")
	p2 := named("task-p2", "evening routine")
	child := named("task-c", "brush teeth")
	child.ParentIDs = []string{"task-missing", "task-p2", "task-p1"}

	items := Group([]Task{p1, p2, child})

	require.Len(t, items, 2)
	assert.Empty(t, items[0].Children, "p1 listed after p2, must not also claim the child")
	require.Len(t, items[1].Children, 1)
	assert.Equal(t, "task-c", items[1].Children[0].ID)
}

func TestGroup_MissingChildOrderSortsFirst(t *testing.T) {
	t.Parallel()

	parent := named("task-p", "chores")
	ordered := named("task-x", "second")
	ordered.ParentIDs = []string{"task-p"}
	ordered.ChildOrder = 5
	unordered := named("task-y", "first")
	unordered.ParentIDs = []string{"task-p"}

	items := Group([]Task{parent, ordered, unordered})

	require.Len(t, items, 1)
	require.Len(t, items[0].Children, 2)
	assert.Equal(t, "task-y", items[0].Children[0].ID)
}

func TestGroup_EveryTaskAppearsExactlyOnce(t *testing.T) {
	t.Parallel()

	cases := map[string][]Task{
		"flat": {
			named("task-1", "one"), named("task-2", "two"), named("task-3", "three"),
		},
		"simple forest": func() []Task {
			p := named("task-p", "parent")
			c := named("task-c", "child")
			c.ParentIDs = []string{"task-p"}
			o := named("task-o", "orphan")
			o.ParentIDs = []string{"task-nope"}
			return []Task{p, c, o}
		}(),
		"grandchild chain": func() []Task {
			a := named("task-a", "a")
			b := named("task-b", "b")
			b.ParentIDs = []string{"task-a"}
			c := named("task-c", "c")
			c.ParentIDs = []string{"task-b"}
			return []Task{a, b, c}
		}(),
		"parent cycle": func() []Task {
			a := named("task-a", "a")
			a.ParentIDs = []string{"task-b"}
			b := named("task-b", "b")
			b.ParentIDs = []string{"task-a"}
			return []Task{a, b}
		}(),
		"self parent": func() []Task {
			a := named("task-a", "a")
			a.ParentIDs = []string{"task-a"}
			return []Task{a}
		}(),
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			seen := map[string]int{}
			for _, id := range flatten(Group(input)) {
				seen[id]++
			}
			assert.Len(t, seen, len(input))
			for id, n := range seen {
				assert.Equal(t, 1, n, "task %s appeared %d times", id, n)
			}
		})
	}
}

func TestGroup_DeterministicAcrossCalls(t *testing.T) {
	t.Parallel()

	p := named("task-p", "parent")
	c1 := named("task-c1", "child one")
	c1.ParentIDs = []string{"task-p"}
	c2 := named("task-c2", "child two")
	c2.ParentIDs = []string{"task-p"}
	input := []Task{c2, p, c1}

	first := flatten(Group(input))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, flatten(Group(input)))
	}
}

func TestGroup_DueTasksKeepTheirState(t *testing.T) {
	t.Parallel()

	p := named("task-p", "parent")
	p.NextDue = NewDate(2025, time.March, 3)

	items := Group([]Task{p})

	require.Len(t, items, 1)
	assert.Equal(t, NewDate(2025, time.March, 3), items[0].Task.NextDue)
}

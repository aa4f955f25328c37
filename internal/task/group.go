package task

import "sort"

// Item is one display entry in the grouped forest: a top-level task and the
// children nested under it.
type Item struct {
	Task     Task   `json:"task"`
	Children []Task `json:"children,omitempty"`
	IsParent bool   `json:"isParent"`
}

// Group organizes a flat working set into a parent/children display forest.
//
// A task with at least one parent reference resolving within the set is a
// bound child: it is suppressed from the top level and appears nested under
// the first parent in its ParentIDs list that resolves, never under more
// than one. A task whose every parent reference dangles surfaces as a
// standalone top-level item. Children sort by ChildOrder ascending; ties keep
// input order. The result depends only on the input slice and its order.
//
// The forest is two levels deep. A child whose resolved parent is itself a
// bound child is promoted to the top level rather than dropped, so cycles and
// grandparent chains still show every task exactly once.
func Group(tasks []Task) []Item {
	ids := make(map[string]struct{}, len(tasks))
	for i := range tasks {
		ids[tasks[i].ID] = struct{}{}
	}

	// boundTo maps a child's ID to the single parent it nests under.
	boundTo := make(map[string]string, len(tasks))
	for i := range tasks {
		for _, pid := range tasks[i].ParentIDs {
			if _, ok := ids[pid]; ok && pid != tasks[i].ID {
				boundTo[tasks[i].ID] = pid
				break
			}
		}
	}

	// Promote children bound to a parent that is itself bound. Processing in
	// input order until stable keeps the outcome deterministic for cycles.
	for changed := true; changed; {
		changed = false
		for i := range tasks {
			id := tasks[i].ID
			parent, bound := boundTo[id]
			if !bound {
				continue
			}
			if _, parentBound := boundTo[parent]; parentBound {
				delete(boundTo, id)
				changed = true
			}
		}
	}

	items := make([]Item, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if _, suppressed := boundTo[t.ID]; suppressed {
			continue
		}

		var children []Task
		for j := range tasks {
			if pid, bound := boundTo[tasks[j].ID]; bound && pid == t.ID {
				children = append(children, tasks[j])
			}
		}
		sort.SliceStable(children, func(a, b int) bool {
			return children[a].ChildOrder < children[b].ChildOrder
		})

		items = append(items, Item{
			Task:     *t,
			Children: children,
			IsParent: len(children) > 0,
		})
	}
	return items
}

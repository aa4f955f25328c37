package task

// minSearchDays is the floor of the bounded exclusion search. The search
// window is three interval lengths, but never less than two weeks so that a
// weekly weekday filter always has room to land.
const minSearchDays = 14

// Advanced is the outcome of advancing a task after a completion.
type Advanced struct {
	Task Task
	// Remove signals that the task should be deleted instead of rescheduled
	// (DeleteAfterCompletion).
	Remove bool
}

// Advance computes the task's state after being completed on the given date:
// next due date, last-completed date and completion streak. It is pure; the
// caller persists the result. On error the input task must be left untouched.
func Advance(t Task, completion Date) (Advanced, error) {
	if err := t.Validate(); err != nil {
		return Advanced{}, err
	}

	updated := t.Clone()

	// Streak: on-time means completed on or before the due date, or the task
	// had no due date at all. A late completion resets the streak.
	if t.NextDue.IsZero() || !completion.After(t.NextDue) {
		updated.CompletionStreak++
	} else {
		updated.CompletionStreak = 0
	}
	updated.LastCompleted = completion

	if t.DeleteAfterCompletion {
		return Advanced{Task: updated, Remove: true}, nil
	}

	if t.IntervalUnit == UnitAdhoc {
		// Ad-hoc tasks never reschedule themselves; they go dormant until a
		// trigger or a manual activation sets a new due date.
		updated.NextDue = Date{}
		return Advanced{Task: updated}, nil
	}

	candidate := nextCandidate(&t, completion)
	due, err := nextAllowed(&t, candidate)
	if err != nil {
		return Advanced{}, err
	}
	updated.NextDue = due

	return Advanced{Task: updated}, nil
}

// nextCandidate computes the raw next occurrence before any weekday or
// exclusion filtering.
func nextCandidate(t *Task, completion Date) Date {
	step := t.IntervalQty * unitDays(t.IntervalUnit)

	if t.OverdueBehavior == OverdueSkipToNext && !t.NextDue.IsZero() {
		// Keep the original cadence anchored on the old due date and skip
		// every occurrence that already passed.
		candidate := t.NextDue.AddDays(step)
		for !candidate.After(completion) {
			candidate = candidate.AddDays(step)
		}
		return candidate
	}

	// POSTPONE (and SKIP_TO_NEXT with no prior due date): the cycle restarts
	// from the completion date.
	return completion.AddDays(step)
}

// NextValidOn returns the nearest date on or after from that satisfies the
// task's specific-weekday and exclusion filters. The search never moves
// backward and is bounded; an over-constrained task yields a SchedulingError.
func NextValidOn(t *Task, from Date) (Date, error) {
	return nextAllowed(t, from)
}

func nextAllowed(t *Task, candidate Date) (Date, error) {
	limit := searchWindow(t)
	d := candidate

	for moved := 0; moved <= limit; {
		if !t.AllowsWeekday(Weekday(d.Weekday())) {
			d = d.AddDays(1)
			moved++
			continue
		}
		if !t.IsExcluded(d) {
			return d, nil
		}
		d = d.AddDays(1)
		moved++
	}

	return Date{}, &SchedulingError{TaskID: t.ID, From: candidate, SearchedDays: limit}
}

// searchWindow bounds the exclusion search to three interval lengths, with a
// two-week floor. Ad-hoc tasks have no interval, so they get the floor.
func searchWindow(t *Task) int {
	if t.IntervalUnit == UnitAdhoc {
		return minSearchDays
	}
	window := 3 * t.IntervalQty * unitDays(t.IntervalUnit)
	return max(window, minSearchDays)
}

func unitDays(u IntervalUnit) int {
	if u == UnitWeek {
		return 7
	}
	return 1
}

package task

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// IntervalUnit determines how a task recurs after completion.
type IntervalUnit string

const (
	UnitDay   IntervalUnit = "DAY"
	UnitWeek  IntervalUnit = "WEEK"
	UnitAdhoc IntervalUnit = "ADHOC" // no periodic recurrence; scheduled by triggers or by hand
)

// Valid reports whether the unit is one of the defined values.
func (u IntervalUnit) Valid() bool {
	return u == UnitDay || u == UnitWeek || u == UnitAdhoc
}

// OverdueBehavior governs how a late completion affects the next due date.
type OverdueBehavior string

const (
	// OverduePostpone shifts the whole cycle forward from the completion date.
	OverduePostpone OverdueBehavior = "POSTPONE"
	// OverdueSkipToNext keeps the original cadence and skips missed occurrences.
	OverdueSkipToNext OverdueBehavior = "SKIP_TO_NEXT"
)

// Difficulty is a descriptive rating with no scheduling effect.
type Difficulty string

const (
	DifficultyTrivial Difficulty = "TRIVIAL"
	DifficultyEasy    Difficulty = "EASY"
	DifficultyMedium  Difficulty = "MEDIUM"
	DifficultyHard    Difficulty = "HARD"
)

// Weekday wraps time.Weekday to serialize as the upper-case symbolic name.
type Weekday time.Weekday

var weekdayNames = [...]string{
	"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY",
}

// ParseWeekday converts an upper-case weekday name to a Weekday.
func ParseWeekday(s string) (Weekday, error) {
	upper := strings.ToUpper(s)
	for i, name := range weekdayNames {
		if name == upper {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (w Weekday) String() string {
	if w >= 0 && int(w) < len(weekdayNames) {
		return weekdayNames[w]
	}
	return fmt.Sprintf("WEEKDAY(%d)", int(w))
}

// MarshalJSON serializes the weekday as its upper-case name.
func (w Weekday) MarshalJSON() ([]byte, error) {
	if w < 0 || int(w) >= len(weekdayNames) {
		return nil, fmt.Errorf("invalid weekday %d", int(w))
	}
	return json.Marshal(weekdayNames[w])
}

// UnmarshalJSON accepts an upper-case weekday name.
func (w *Weekday) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Task is the sole persisted entity: one recurring (or ad-hoc) piece of work.
//
// Relationship fields hold plain identifiers, never live references. Entries
// that no longer resolve against the current snapshot are tolerated and
// treated as absent; deleting a task never cascades to its relatives.
type Task struct {
	ID string `json:"id"`

	// Descriptive attributes, no scheduling effect.
	Name            string     `json:"name"`
	Category        string     `json:"category,omitempty"`
	Description     string     `json:"description,omitempty"`
	Difficulty      Difficulty `json:"difficulty,omitempty"`
	EstimateMinutes int        `json:"estimateMinutes,omitempty"`
	Tags            []string   `json:"tags"`

	// Scheduling attributes.
	IntervalUnit    IntervalUnit    `json:"intervalUnit"`
	IntervalQty     int             `json:"intervalQty"` // ignored when IntervalUnit == UnitAdhoc
	SpecificDays    []Weekday       `json:"specificDaysOfWeek"`
	ExcludedDays    []Weekday       `json:"excludedDaysOfWeek"`
	ExcludedDates   []Date          `json:"excludedDates"`
	OverdueBehavior OverdueBehavior `json:"overdueBehavior,omitempty"`

	// State attributes.
	NextDue          Date `json:"nextDue"` // zero = not currently scheduled
	LastCompleted    Date `json:"lastCompleted"`
	CompletionStreak int  `json:"completionStreak"`
	Active           bool `json:"active"`

	// Relationship attributes.
	ParentIDs                []string `json:"parentTaskIds"`
	ChildOrder               int      `json:"childOrder,omitempty"`
	RequiresManualCompletion bool     `json:"requiresManualCompletion,omitempty"`
	TriggeredBy              []string `json:"triggeredByTaskIds"`
	Triggers                 []string `json:"triggersTaskIds"`
	RequiresInventory        bool     `json:"requiresInventory,omitempty"`
	DeleteAfterCompletion    bool     `json:"deleteAfterCompletion,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Validate checks the invariants a task must satisfy before it is stored.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ConfigError{TaskID: t.ID, Reason: "task name must not be empty"}
	}
	if !t.IntervalUnit.Valid() {
		return &ConfigError{TaskID: t.ID, Reason: fmt.Sprintf("unknown interval unit %q", t.IntervalUnit)}
	}
	if t.IntervalUnit != UnitAdhoc && t.IntervalQty < 1 {
		return &ConfigError{TaskID: t.ID, Reason: fmt.Sprintf("interval quantity %d must be at least 1 for %s tasks", t.IntervalQty, t.IntervalUnit)}
	}
	if t.CompletionStreak < 0 {
		return &ConfigError{TaskID: t.ID, Reason: "completion streak must not be negative"}
	}
	return nil
}

// IsDueOn reports whether the task is due on or before the given date.
func (t *Task) IsDueOn(date Date) bool {
	return t.Active && !t.NextDue.IsZero() && !t.NextDue.After(date)
}

// AllowsWeekday reports whether the weekday passes the specific-days filter.
// An empty filter allows every weekday.
func (t *Task) AllowsWeekday(wd Weekday) bool {
	return len(t.SpecificDays) == 0 || slices.Contains(t.SpecificDays, wd)
}

// IsExcluded reports whether the date is ruled out by the task's
// excluded-weekday or excluded-date filters.
func (t *Task) IsExcluded(d Date) bool {
	if slices.Contains(t.ExcludedDays, Weekday(d.Weekday())) {
		return true
	}
	return slices.ContainsFunc(t.ExcludedDates, d.Equal)
}

// Clone returns a deep copy safe to mutate independently.
func (t *Task) Clone() Task {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	c.SpecificDays = slices.Clone(t.SpecificDays)
	c.ExcludedDays = slices.Clone(t.ExcludedDays)
	c.ExcludedDates = slices.Clone(t.ExcludedDates)
	c.ParentIDs = slices.Clone(t.ParentIDs)
	c.TriggeredBy = slices.Clone(t.TriggeredBy)
	c.Triggers = slices.Clone(t.Triggers)
	return c
}

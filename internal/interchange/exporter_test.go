package interchange

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolapsis/cadence/internal/task"
)

func TestExporter_Export_FullSnapshot(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	active := task.Task{ID: "task-1", Name: "active one", IntervalUnit: task.UnitDay, IntervalQty: 1, Active: true}
	retired := task.Task{ID: "task-2", Name: "inactive one", IntervalUnit: task.UnitWeek, IntervalQty: 2}
	for _, tk := range []task.Task{active, retired} {
		_, err := s.Create(tk)
		require.NoError(t, err)
	}

	payload, err := NewExporter(s).Export()
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, payload.Version)
	assert.False(t, payload.ExportDate.IsZero())
	assert.Len(t, payload.Tasks, 2, "export includes inactive tasks")
}

func TestExporter_AbsentCollectionsSerializeAsNull(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Create(task.Task{ID: "task-1", Name: "bare", IntervalUnit: task.UnitAdhoc})
	require.NoError(t, err)

	data, err := NewExporter(s).Marshal()
	require.NoError(t, err)

	var raw struct {
		Tasks []map[string]json.RawMessage `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Tasks, 1)

	for _, field := range []string{"tags", "specificDaysOfWeek", "parentTaskIds", "triggersTaskIds", "nextDue"} {
		assert.Equal(t, "null", string(raw.Tasks[0][field]), "field %s must be null, not empty", field)
	}
}

func TestExporter_RoundTripsThroughImporter(t *testing.T) {
	t.Parallel()
	source := newTestStore(t)

	tk := task.Task{
		ID:              "task-rt",
		Name:            "round trip",
		IntervalUnit:    task.UnitWeek,
		IntervalQty:     2,
		SpecificDays:    []task.Weekday{task.Weekday(time.Monday)},
		OverdueBehavior: task.OverdueSkipToNext,
		NextDue:         task.NewDate(2025, time.July, 7),
		CompletionStreak: 3,
		Active:          true,
		Triggers:        []string{"task-rt2"},
	}
	other := task.Task{ID: "task-rt2", Name: "the other", IntervalUnit: task.UnitAdhoc, Active: true}
	for _, c := range []task.Task{tk, other} {
		_, err := source.Create(c)
		require.NoError(t, err)
	}

	data, err := NewExporter(source).Marshal()
	require.NoError(t, err)

	dest := newTestStore(t)
	im := newTestImporter(t, dest)
	pending, err := im.Begin(data)
	require.NoError(t, err)
	result, err := im.Apply(pending, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	got, err := dest.Get("task-rt")
	require.NoError(t, err)
	assert.Equal(t, task.UnitWeek, got.IntervalUnit)
	assert.Equal(t, []task.Weekday{task.Weekday(time.Monday)}, got.SpecificDays)
	assert.Equal(t, task.OverdueSkipToNext, got.OverdueBehavior)
	assert.Equal(t, task.NewDate(2025, time.July, 7), got.NextDue)
	assert.Equal(t, 3, got.CompletionStreak)
	assert.Equal(t, []string{"task-rt2"}, got.Triggers)
}

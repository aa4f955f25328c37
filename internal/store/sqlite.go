package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kolapsis/cadence/internal/task"
)

const timeFormat = time.RFC3339

var migrations = []string{
	`CREATE TABLE tasks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT '',
		estimate_minutes INTEGER NOT NULL DEFAULT 0,
		tags TEXT NOT NULL DEFAULT 'null',
		interval_unit TEXT NOT NULL,
		interval_qty INTEGER NOT NULL DEFAULT 0,
		specific_days TEXT NOT NULL DEFAULT 'null',
		excluded_days TEXT NOT NULL DEFAULT 'null',
		excluded_dates TEXT NOT NULL DEFAULT 'null',
		overdue_behavior TEXT NOT NULL DEFAULT 'POSTPONE',
		next_due TEXT NOT NULL DEFAULT '',
		last_completed TEXT NOT NULL DEFAULT '',
		completion_streak INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		parent_ids TEXT NOT NULL DEFAULT 'null',
		child_order INTEGER NOT NULL DEFAULT 0,
		requires_manual_completion INTEGER NOT NULL DEFAULT 0,
		triggered_by TEXT NOT NULL DEFAULT 'null',
		triggers TEXT NOT NULL DEFAULT 'null',
		requires_inventory INTEGER NOT NULL DEFAULT 0,
		delete_after_completion INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX idx_tasks_due ON tasks (active, next_due)`,
}

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, zero CGO).
// Relationship and filter collections are stored as JSON text so the
// null-vs-empty distinction survives a round trip.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and runs migrations.
// The database file is created with 0600 permissions and its parent directory with 0700.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return nil, fmt.Errorf("creating database file: %w", err)
			}
			_ = f.Close()
		}
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		slog.Info("applying migration", "version", i+1)
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const taskColumns = `id, name, category, description, difficulty, estimate_minutes, tags,
	interval_unit, interval_qty, specific_days, excluded_days, excluded_dates, overdue_behavior,
	next_due, last_completed, completion_streak, active,
	parent_ids, child_order, requires_manual_completion, triggered_by, triggers,
	requires_inventory, delete_after_completion, created_at, updated_at`

// Create persists a new task, assigning a fresh identifier when blank.
func (s *SQLiteStore) Create(t task.Task) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if err := s.insert(s.db, &t); err != nil {
		return "", err
	}
	return t.ID, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insert(tx execer, t *task.Task) error {
	_, err := tx.Exec(`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Category, t.Description, string(t.Difficulty), t.EstimateMinutes, jsonText(t.Tags),
		string(t.IntervalUnit), t.IntervalQty, jsonText(t.SpecificDays), jsonText(t.ExcludedDays),
		jsonText(t.ExcludedDates), string(t.OverdueBehavior),
		t.NextDue.String(), t.LastCompleted.String(), t.CompletionStreak, boolToInt(t.Active),
		jsonText(t.ParentIDs), t.ChildOrder, boolToInt(t.RequiresManualCompletion),
		jsonText(t.TriggeredBy), jsonText(t.Triggers),
		boolToInt(t.RequiresInventory), boolToInt(t.DeleteAfterCompletion),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

// Get returns the task with the given identifier.
func (s *SQLiteStore) Get(id string) (task.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return task.Task{}, ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("getting task %s: %w", id, err)
	}
	return t, nil
}

// GetAll returns every task ordered by creation time, then identifier.
func (s *SQLiteStore) GetAll() ([]task.Task, error) {
	return s.queryTasks(`SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`)
}

// GetDueOnOrBefore returns active tasks due on or before the given date.
func (s *SQLiteStore) GetDueOnOrBefore(d task.Date) ([]task.Task, error) {
	return s.queryTasks(`SELECT `+taskColumns+` FROM tasks
		WHERE active = 1 AND next_due != '' AND next_due <= ?
		ORDER BY next_due, created_at, id`, d.String())
}

func (s *SQLiteStore) queryTasks(query string, args ...any) ([]task.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update overwrites the record at the task's identifier.
func (s *SQLiteStore) Update(t task.Task) error {
	t.UpdatedAt = time.Now()
	res, err := s.update(s.db, &t)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) update(tx execer, t *task.Task) (sql.Result, error) {
	res, err := tx.Exec(`UPDATE tasks SET
		name = ?, category = ?, description = ?, difficulty = ?, estimate_minutes = ?, tags = ?,
		interval_unit = ?, interval_qty = ?, specific_days = ?, excluded_days = ?, excluded_dates = ?,
		overdue_behavior = ?, next_due = ?, last_completed = ?, completion_streak = ?, active = ?,
		parent_ids = ?, child_order = ?, requires_manual_completion = ?, triggered_by = ?, triggers = ?,
		requires_inventory = ?, delete_after_completion = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Category, t.Description, string(t.Difficulty), t.EstimateMinutes, jsonText(t.Tags),
		string(t.IntervalUnit), t.IntervalQty, jsonText(t.SpecificDays), jsonText(t.ExcludedDays),
		jsonText(t.ExcludedDates), string(t.OverdueBehavior),
		t.NextDue.String(), t.LastCompleted.String(), t.CompletionStreak, boolToInt(t.Active),
		jsonText(t.ParentIDs), t.ChildOrder, boolToInt(t.RequiresManualCompletion),
		jsonText(t.TriggeredBy), jsonText(t.Triggers),
		boolToInt(t.RequiresInventory), boolToInt(t.DeleteAfterCompletion),
		formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	return res, nil
}

// Delete removes the task with the given identifier.
func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyCompletion writes one completion event in a single transaction.
func (s *SQLiteStore) ApplyCompletion(c Completion) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning completion transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if c.Remove {
		if _, err := tx.Exec("DELETE FROM tasks WHERE id = ?", c.Updated.ID); err != nil {
			return fmt.Errorf("removing completed task: %w", err)
		}
	} else {
		u := c.Updated
		u.UpdatedAt = time.Now()
		if _, err := s.update(tx, &u); err != nil {
			return err
		}
	}

	now := formatTime(time.Now())
	for i := range c.Activated {
		a := &c.Activated[i]
		if _, err := tx.Exec("UPDATE tasks SET next_due = ?, updated_at = ? WHERE id = ?",
			a.NextDue.String(), now, a.ID); err != nil {
			return fmt.Errorf("activating task %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing completion: %w", err)
	}
	return nil
}

// --- Helpers ---

func scanTask(scan func(...any) error) (task.Task, error) {
	var t task.Task
	var difficulty, unit, behavior string
	var tags, specificDays, excludedDays, excludedDates string
	var parentIDs, triggeredBy, triggers string
	var nextDue, lastCompleted, createdAt, updatedAt string
	var active, manual, inventory, deleteAfter int

	err := scan(&t.ID, &t.Name, &t.Category, &t.Description, &difficulty, &t.EstimateMinutes, &tags,
		&unit, &t.IntervalQty, &specificDays, &excludedDays, &excludedDates, &behavior,
		&nextDue, &lastCompleted, &t.CompletionStreak, &active,
		&parentIDs, &t.ChildOrder, &manual, &triggeredBy, &triggers,
		&inventory, &deleteAfter, &createdAt, &updatedAt)
	if err != nil {
		return task.Task{}, err
	}

	t.Difficulty = task.Difficulty(difficulty)
	t.IntervalUnit = task.IntervalUnit(unit)
	t.OverdueBehavior = task.OverdueBehavior(behavior)
	t.Active = active != 0
	t.RequiresManualCompletion = manual != 0
	t.RequiresInventory = inventory != 0
	t.DeleteAfterCompletion = deleteAfter != 0
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)

	if t.NextDue, err = task.ParseDate(nextDue); err != nil {
		return task.Task{}, fmt.Errorf("scanning next_due: %w", err)
	}
	if t.LastCompleted, err = task.ParseDate(lastCompleted); err != nil {
		return task.Task{}, fmt.Errorf("scanning last_completed: %w", err)
	}

	collections := []struct {
		raw string
		dst any
	}{
		{tags, &t.Tags},
		{specificDays, &t.SpecificDays},
		{excludedDays, &t.ExcludedDays},
		{excludedDates, &t.ExcludedDates},
		{parentIDs, &t.ParentIDs},
		{triggeredBy, &t.TriggeredBy},
		{triggers, &t.Triggers},
	}
	for _, c := range collections {
		if err := json.Unmarshal([]byte(c.raw), c.dst); err != nil {
			return task.Task{}, fmt.Errorf("scanning collection column: %w", err)
		}
	}

	return t, nil
}

// jsonText serializes a collection column, preserving nil as SQL-stored "null".
func jsonText(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeFormat, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package interchange

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/kolapsis/cadence/internal/store"
	"github.com/kolapsis/cadence/internal/task"
)

//go:embed schema.json
var schemaJSON []byte

// Resolution is the caller's decision for one conflicting identifier.
type Resolution string

const (
	// ResolutionSkip leaves the existing task untouched. This is the default
	// for any conflict the caller does not decide explicitly: the engine
	// never replaces data without an instruction.
	ResolutionSkip Resolution = "SKIP"
	// ResolutionReplace overwrites the existing record in place.
	ResolutionReplace Resolution = "REPLACE"
	// ResolutionKeepBoth creates the imported task under a fresh identifier.
	ResolutionKeepBoth Resolution = "KEEP_BOTH"
)

// ConflictType classifies an import conflict.
type ConflictType string

// ConflictDuplicateID is the only conflict kind: an imported identifier
// already exists in the store.
const ConflictDuplicateID ConflictType = "DUPLICATE_ID"

// Conflict describes one imported task colliding with the store.
type Conflict struct {
	Type     ConflictType `json:"type"`
	TaskID   string       `json:"taskId"`
	Existing task.Task    `json:"existing"`
	Imported task.Task    `json:"imported"`
}

// Result counts what Apply did.
type Result struct {
	Imported int `json:"tasksImported"`
	Skipped  int `json:"tasksSkipped"`
	Replaced int `json:"tasksReplaced"`
}

// PendingImport is a parsed, validated batch waiting to be applied. Nothing
// is written until Apply, so an abandoned pending import has no effect.
type PendingImport struct {
	tasks       []task.Task
	conflicts   []Conflict
	conflictIDs map[string]struct{}
}

// Conflicts returns the detected identifier collisions, in batch order.
func (p *PendingImport) Conflicts() []Conflict { return p.conflicts }

// HasConflicts reports whether Apply needs caller resolutions to do anything
// beyond plain creation.
func (p *PendingImport) HasConflicts() bool { return len(p.conflicts) > 0 }

// Importer merges external task batches into the store.
type Importer struct {
	store  store.Store
	schema *jsonschema.Schema
}

// NewImporter compiles the payload schema and binds the importer to a store.
func NewImporter(s store.Store) (*Importer, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	return &Importer{store: s, schema: schema}, nil
}

// Begin parses and validates a payload and probes the store for identifier
// conflicts. It is entirely read-only: the store is untouched until Apply.
func (im *Importer) Begin(data []byte) (*PendingImport, error) {
	payload, err := im.parse(data)
	if err != nil {
		return nil, err
	}

	if payload.Version != SchemaVersion {
		return nil, &VersionError{Got: payload.Version, Want: SchemaVersion}
	}

	tasks, err := validateBatch(payload.Tasks)
	if err != nil {
		return nil, err
	}

	pending := &PendingImport{
		tasks:       tasks,
		conflictIDs: make(map[string]struct{}),
	}
	for i := range tasks {
		existing, err := im.store.Get(tasks[i].ID)
		if errors.Is(err, store.ErrNotFound) {
			continue // no conflict
		}
		if err != nil {
			return nil, fmt.Errorf("probing store for %s: %w", tasks[i].ID, err)
		}
		pending.conflicts = append(pending.conflicts, Conflict{
			Type:     ConflictDuplicateID,
			TaskID:   tasks[i].ID,
			Existing: existing,
			Imported: tasks[i],
		})
		pending.conflictIDs[tasks[i].ID] = struct{}{}
	}

	slog.Info("import batch validated",
		"tasks", len(tasks),
		"conflicts", len(pending.conflicts))
	return pending, nil
}

// parse checks the raw bytes against the embedded JSON Schema, then decodes.
func (im *Importer) parse(data []byte) (*Payload, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Err: err}
	}
	if err := im.schema.Validate(doc); err != nil {
		return nil, &FormatError{Err: err}
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &FormatError{Err: err}
	}
	return &payload, nil
}

// validateBatch enforces the self-consistency rules: non-blank names, unique
// identifiers within the batch, and parent/triggered-by references that
// resolve inside the batch itself (not against the store).
func validateBatch(wire []TaskJSON) ([]task.Task, error) {
	ids := make(map[string]struct{}, len(wire))
	for i := range wire {
		if _, dup := ids[wire[i].ID]; dup {
			return nil, &FormatError{Err: fmt.Errorf("duplicate identifier %q within batch", wire[i].ID)}
		}
		ids[wire[i].ID] = struct{}{}
	}

	tasks := make([]task.Task, 0, len(wire))
	for i := range wire {
		w := &wire[i]
		if strings.TrimSpace(w.Name) == "" {
			return nil, &FormatError{Err: fmt.Errorf("task %s has a blank name", w.ID)}
		}

		for _, pid := range w.ParentTaskIDs {
			if _, ok := ids[pid]; !ok {
				return nil, &ReferentialError{TaskID: w.ID, Field: "parentTaskIds", MissingID: pid}
			}
		}
		for _, tid := range w.TriggeredByTaskIDs {
			if _, ok := ids[tid]; !ok {
				return nil, &ReferentialError{TaskID: w.ID, Field: "triggeredByTaskIds", MissingID: tid}
			}
		}

		tasks = append(tasks, fromWire(w))
	}
	return tasks, nil
}

// Apply merges the pending batch into the store using the caller's
// resolutions. Conflicting identifiers missing from the map default to SKIP.
// Non-conflicting tasks are created under their imported identifiers, so
// references within a clean batch survive the merge.
func (im *Importer) Apply(p *PendingImport, resolutions map[string]Resolution) (Result, error) {
	var result Result

	for i := range p.tasks {
		t := p.tasks[i]

		if _, conflicting := p.conflictIDs[t.ID]; !conflicting {
			if _, err := im.store.Create(t); err != nil {
				return result, fmt.Errorf("creating imported task %s: %w", t.ID, err)
			}
			result.Imported++
			continue
		}

		resolution, ok := resolutions[t.ID]
		if !ok {
			resolution = ResolutionSkip
		}
		switch resolution {
		case ResolutionSkip:
			result.Skipped++
		case ResolutionReplace:
			if err := im.store.Update(t); err != nil {
				return result, fmt.Errorf("replacing task %s: %w", t.ID, err)
			}
			result.Replaced++
		case ResolutionKeepBoth:
			t.ID = "" // the store assigns a fresh identifier
			newID, err := im.store.Create(t)
			if err != nil {
				return result, fmt.Errorf("creating kept copy of %s: %w", p.tasks[i].ID, err)
			}
			slog.Debug("kept both copies", "original_id", p.tasks[i].ID, "new_id", newID)
			result.Imported++
		default:
			return result, fmt.Errorf("unknown resolution %q for task %s", resolution, t.ID)
		}
	}

	slog.Info("import applied",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"replaced", result.Replaced)
	return result, nil
}

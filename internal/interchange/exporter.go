package interchange

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kolapsis/cadence/internal/store"
)

// Exporter serializes the full store to the interchange format.
type Exporter struct {
	store store.Store
}

// NewExporter binds an exporter to a store.
func NewExporter(s store.Store) *Exporter {
	return &Exporter{store: s}
}

// Export builds a payload from a full store snapshot.
func (e *Exporter) Export() (*Payload, error) {
	tasks, err := e.store.GetAll()
	if err != nil {
		return nil, fmt.Errorf("snapshotting store: %w", err)
	}

	payload := &Payload{
		Version:    SchemaVersion,
		ExportDate: time.Now().UTC().Truncate(time.Second),
		Tasks:      make([]TaskJSON, 0, len(tasks)),
	}
	for i := range tasks {
		payload.Tasks = append(payload.Tasks, toWire(&tasks[i]))
	}
	return payload, nil
}

// Marshal exports the store as indented JSON, ready to write to a file.
func (e *Exporter) Marshal() ([]byte, error) {
	payload, err := e.Export()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}
	return data, nil
}

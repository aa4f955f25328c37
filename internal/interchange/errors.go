package interchange

import "fmt"

// FormatError reports a structurally invalid payload: bad JSON, a schema
// violation, or a field value that cannot be decoded. Terminal for the whole
// batch; nothing is applied.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid interchange payload: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// VersionError reports a payload whose schema version this build does not
// speak. Terminal; there is no cross-version migration.
type VersionError struct {
	Got  string
	Want string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported payload version %q (supported: %q)", e.Got, e.Want)
}

// ReferentialError reports a batch that is not self-consistent: a parent or
// trigger reference points at an identifier missing from the batch itself.
// Terminal; a batch must be internally resolvable before merge.
type ReferentialError struct {
	TaskID    string
	Field     string
	MissingID string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("task %s: %s references %s, which is not in the import batch",
		e.TaskID, e.Field, e.MissingID)
}

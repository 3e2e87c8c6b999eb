package catalog

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks catalog records that cannot be indexed.
var ErrMalformedRecord = errors.New("malformed catalog record")

// MalformedRecordError identifies the offending record by its 0-based
// position in the source sequence.
type MalformedRecordError struct {
	Position int
	Record   Record
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	if e.Record.Name != "" {
		return fmt.Sprintf("catalog record %d (%q): %s", e.Position, e.Record.Name, e.Reason)
	}
	return fmt.Sprintf("catalog record %d: %s", e.Position, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

package codec

import (
	"errors"
	"fmt"
)

// ErrCorruptRecord matches every CorruptRecordError through errors.Is.
var ErrCorruptRecord = errors.New("corrupt record")

// CorruptRecordError reports malformed content inside an existing artifact.
type CorruptRecordError struct {
	Artifact string // products, customers, cart or history; callers may qualify it
	Line     int    // 1-based line number of the offending line
	Field    string // canonical label the line was expected to carry
	Reason   string
}

func (e *CorruptRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("corrupt %s record at line %d: %s", e.Artifact, e.Line, e.Reason)
	}
	return fmt.Sprintf("corrupt %s record at line %d (%s): %s", e.Artifact, e.Line, e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrCorruptRecord) succeed.
func (e *CorruptRecordError) Unwrap() error {
	return ErrCorruptRecord
}

// AsCorruptRecord extracts a CorruptRecordError from an error chain.
func AsCorruptRecord(err error) (*CorruptRecordError, bool) {
	var cre *CorruptRecordError
	if errors.As(err, &cre) {
		return cre, true
	}
	return nil, false
}

package records

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is returned by Writers when a record misses its key.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidStoredDate is returned when a stored date cannot be parsed.
	ErrInvalidStoredDate = errors.New("invalid stored date")
)

// StoredDateError reports which column held the malformed value.
type StoredDateError struct {
	Table  string
	Column string
	Value  string
	Err    error
}

func (e *StoredDateError) Error() string {
	return fmt.Sprintf("%s.%s: cannot parse %q: %v", e.Table, e.Column, e.Value, e.Err)
}

func (e *StoredDateError) Unwrap() error {
	return ErrInvalidStoredDate
}

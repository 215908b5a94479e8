package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingID is returned when a record is saved or read without an id.
	ErrMissingID = errors.New("record has no id")
	// ErrInvalidID is returned for ids that cannot be used as a file name.
	ErrInvalidID = errors.New("record id is not a valid file name")
	// ErrNotFound is returned by operations that need an existing record.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRecord is returned by Save for a record that would not read
	// back: the same schema check runs on write and on read.
	ErrInvalidRecord = errors.New("record does not match its schema")
)

// CorruptRecordError reports a record file that exists but cannot be used.
// It is never returned for a missing record.
type CorruptRecordError struct {
	Path string
	Err  error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record %s: %v", e.Path, e.Err)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

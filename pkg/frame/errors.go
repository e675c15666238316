package frame

import (
	"errors"
	"fmt"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrLengthMismatch = errors.New("column length mismatch")
	ErrEmptyName      = errors.New("frame: empty column name")
	ErrNotNumeric     = errors.New("value is not numeric")
	ErrRowIndex       = errors.New("frame: row index out of range")
)

// ColumnError reports a failure tied to a named column.
type ColumnError struct {
	Name string
	Err  error
}

func (e *ColumnError) Error() string { return fmt.Sprintf("column %q: %v", e.Name, e.Err) }

func (e *ColumnError) Unwrap() error { return e.Err }

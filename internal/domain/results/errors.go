package results

import (
	"errors"
	"fmt"
)

// Sentinel kinds for result building.
var (
	ErrNotFound   = errors.New("category results not found")
	ErrInvalidRow = errors.New("invalid result row")
)

// RowError describes a source row that was skipped while building a set.
type RowError struct {
	Index  int    // zero-based data row index
	Column string // offending column
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: column %s: %v", e.Index, e.Column, e.Err)
}

// Unwrap lets errors.Is match ErrInvalidRow and the parse cause.
func (e RowError) Unwrap() []error {
	return []error{ErrInvalidRow, e.Err}
}

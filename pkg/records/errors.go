package records

import (
	"errors"
	"fmt"
)

// ErrInvalidRow marks a feed row rejected at the ingestion boundary.
var ErrInvalidRow = errors.New("invalid row")

// RowError reports which row of a document was rejected and why.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

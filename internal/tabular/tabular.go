// Package tabular abstracts the read-only tables the job views are built from.
// The join and derive logic only ever sees Rows, never the storage format.
package tabular

import (
	"context"
	"errors"
	"fmt"
)

// Logical table names.
const (
	TableActiveQueue     = "active_queue"
	TableWorkflowCatalog = "workflow_catalog"
)

// Active Queue columns.
const (
	ColJobID          = "job_id"
	ColWorkflowTypeID = "workflow_type_id"
	ColSubmittedBy    = "submitted_by"
	ColStartTime      = "start_time"
	ColEndTime        = "end_time"
	ColStatusMessage  = "status_message"
	ColOutputResult   = "output_result"
	ColErrorMessage   = "error_message"
)

// Workflow Catalog columns. ColWorkflowTypeID is shared with the Active Queue.
const (
	ColWorkflowType = "workflow_type"
	ColDependentOn  = "dependent_on"
	ColWorkflowTask = "workflow_task"
)

var (
	// ErrMissingColumn is returned when a required column is absent from a table.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnknownTable is returned when the backing store has no such table.
	ErrUnknownTable = errors.New("unknown table")
)

// Column names a column to read. Optional columns that are absent from the
// table are silently left out of every Row.
type Column struct {
	Name     string
	Optional bool
}

// Required returns required columns for the given names.
func Required(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n}
	}
	return cols
}

// Row maps column names to cell text. An absent key is a null cell.
type Row map[string]string

// Get returns the cell value and whether it is non-null.
func (r Row) Get(col string) (string, bool) {
	v, ok := r[col]
	return v, ok
}

// Ptr returns the cell value as a pointer, nil for a null cell.
func (r Row) Ptr(col string) *string {
	v, ok := r[col]
	if !ok {
		return nil
	}
	return &v
}

// Store reads whole tables. Rows are returned in the table's natural order.
// Implementations must be safe for concurrent use.
type Store interface {
	ReadTable(ctx context.Context, name string, columns []Column) ([]Row, error)
}

// MissingColumnError wraps ErrMissingColumn with the table and column involved.
func MissingColumnError(table, column string) error {
	return fmt.Errorf("%w: %s.%s", ErrMissingColumn, table, column)
}

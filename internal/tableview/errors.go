package tableview

import (
	"errors"
	"fmt"
)

// Error types returned by TableView queries.
type (
	// StructureError means the table lacks a body, headers or rows.
	StructureError struct {
		Part string // "body", "headers" or "rows"
		Err  error
	}
	// ColumnNotFoundError means no header matched the label.
	ColumnNotFoundError struct{ Column string }
	// AmbiguousColumnError means more than one header matched the label.
	AmbiguousColumnError struct {
		Column    string
		Positions []int // 1-based
	}
	// RowNotFoundError means no row holds Value in Column.
	RowNotFoundError struct{ Column, Value string }
	// ValueNotFoundError means no cell in any column holds Value.
	ValueNotFoundError struct{ Value string }
	// CellNotFoundError means a cell could not be located. Err holds the
	// underlying failure, which may itself be a column error.
	CellNotFoundError struct {
		Column string
		Value  string
		Err    error
	}
)

func (e StructureError) Error() string {
	msg := fmt.Sprintf("table structure: missing %s", e.Part)
	if e.Err != nil && !errors.Is(e.Err, ErrNoSuchElement) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e StructureError) Unwrap() error { return e.Err }

func (e ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

func (e AmbiguousColumnError) Error() string {
	return fmt.Sprintf("column %q is ambiguous: matches positions %v", e.Column, e.Positions)
}

func (e RowNotFoundError) Error() string {
	return fmt.Sprintf("no row with %q in column %q", e.Value, e.Column)
}

func (e ValueNotFoundError) Error() string {
	return fmt.Sprintf("no row contains %q in any column", e.Value)
}

func (e CellNotFoundError) Error() string {
	var msg string
	if e.Value != "" {
		msg = fmt.Sprintf("cell not found in column %q for value %q", e.Column, e.Value)
	} else {
		msg = fmt.Sprintf("cell not found in column %q", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e CellNotFoundError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a content miss: a row, value or cell
// that is legitimately absent.
func IsNotFound(err error) bool {
	var rowErr RowNotFoundError
	var valueErr ValueNotFoundError
	var cellErr CellNotFoundError
	return errors.As(err, &rowErr) || errors.As(err, &valueErr) || errors.As(err, &cellErr)
}

// IsUsageError reports whether err comes from a label that does not resolve
// to exactly one column.
func IsUsageError(err error) bool {
	var notFound ColumnNotFoundError
	var ambiguous AmbiguousColumnError
	return errors.As(err, &notFound) || errors.As(err, &ambiguous)
}

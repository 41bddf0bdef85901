// Package tableview queries a rendered HTML-style table by header label and
// cell content.
//
// A TableView indexes the headers and body rows of a table element once, at
// construction, and answers every query against that snapshot. Columns and
// rows are addressed with 1-based positions at the API boundary, matching the
// way people count columns and the way XPath addresses siblings.
//
// CellAt is the one exception to the snapshot rule: it re-queries the live
// body by position instead of reading the stored rows.
package tableview

import (
	"errors"
	"fmt"
	"strings"
)

// TableView is an immutable query view over a table element. It is not safe
// for concurrent use unless the underlying Element implementation is.
type TableView struct {
	body    Element
	headers []Element
	labels  []string // raw header text, same order as headers
	rows    []Element
}

// New indexes root's body, headers and rows. The body and header lookups
// are both attempted; every failure is reported as a StructureError.
func New(root Element) (*TableView, error) {
	var errs []error

	body, err := root.Find("tbody")
	if err != nil {
		errs = append(errs, StructureError{Part: "body", Err: err})
	}

	headers, err := root.FindAll("th")
	if err != nil {
		errs = append(errs, StructureError{Part: "headers", Err: err})
	} else if len(headers) == 0 {
		errs = append(errs, StructureError{Part: "headers"})
	}

	var rows []Element
	if body != nil {
		rows, err = body.FindAll("tr")
		if err != nil {
			errs = append(errs, StructureError{Part: "rows", Err: err})
		} else if len(rows) == 0 {
			errs = append(errs, StructureError{Part: "rows"})
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	labels := make([]string, len(headers))
	for i, h := range headers {
		labels[i] = h.Text()
	}

	return &TableView{
		body:    body,
		headers: headers,
		labels:  labels,
		rows:    rows,
	}, nil
}

// ColumnIndex returns the 1-based position of the header whose trimmed text
// equals label exactly. label itself is not trimmed.
func (t *TableView) ColumnIndex(label string) (int, error) {
	var matches []int
	for i, text := range t.labels {
		if strings.TrimSpace(text) == label {
			matches = append(matches, i+1)
		}
	}

	switch len(matches) {
	case 0:
		return 0, ColumnNotFoundError{Column: label}
	case 1:
		return matches[0], nil
	default:
		return 0, AmbiguousColumnError{Column: label, Positions: matches}
	}
}

// lookupRow returns the first stored row whose cell at pos has text equal to
// value. A row without a cell at pos does not match. ok is false when no row
// matches; err is reserved for provider failures.
func (t *TableView) lookupRow(pos int, value string) (row Element, ok bool, err error) {
	path := cellPath(pos)
	for _, r := range t.rows {
		cell, err := r.FindPath(path)
		if errors.Is(err, ErrNoSuchElement) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		if cell.Text() == value {
			return r, true, nil
		}
	}
	return nil, false, nil
}

// FindRow returns the top-most row whose cell in column label equals value.
func (t *TableView) FindRow(label, value string) (Element, error) {
	pos, err := t.ColumnIndex(label)
	if err != nil {
		return nil, err
	}

	row, ok, err := t.lookupRow(pos, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, RowNotFoundError{Column: label, Value: value}
	}
	return row, nil
}

// FindFirstRow searches every column for value. Columns are scanned left to
// right and, within a column, rows top to bottom: a match in an earlier
// column wins even when a later column matches in an earlier row.
func (t *TableView) FindFirstRow(value string) (Element, error) {
	for pos := 1; pos <= len(t.headers); pos++ {
		row, ok, err := t.lookupRow(pos, value)
		if err != nil {
			return nil, err
		}
		if ok {
			return row, nil
		}
	}
	return nil, ValueNotFoundError{Value: value}
}

// ColumnContains reports whether any row holds value in column label.
// Column resolution errors are returned, not reported as false.
func (t *TableView) ColumnContains(label, value string) (bool, error) {
	pos, err := t.ColumnIndex(label)
	if err != nil {
		return false, err
	}

	_, ok, err := t.lookupRow(pos, value)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// FindCell returns the cell in column label of the first row whose cell in
// that column equals value. Every failure, including column resolution, is
// reported as a CellNotFoundError wrapping the cause.
func (t *TableView) FindCell(label, value string) (Element, error) {
	row, err := t.FindRow(label, value)
	if err != nil {
		return nil, CellNotFoundError{Column: label, Value: value, Err: err}
	}

	cell, err := t.CellInRow(row, label)
	if err != nil {
		return nil, CellNotFoundError{Column: label, Value: value, Err: err}
	}
	return cell, nil
}

// CellInRow returns row's cell in column label. The row may come from any
// source; it does not need to be part of the snapshot.
func (t *TableView) CellInRow(row Element, label string) (Element, error) {
	pos, err := t.ColumnIndex(label)
	if err != nil {
		return nil, CellNotFoundError{Column: label, Err: err}
	}

	cell, err := row.FindPath(cellPath(pos))
	if err != nil {
		return nil, CellNotFoundError{Column: label, Err: err}
	}
	return cell, nil
}

// Headers returns the header texts in order, untrimmed.
func (t *TableView) Headers() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// ColumnCount returns the number of headers.
func (t *TableView) ColumnCount() int {
	return len(t.headers)
}

// RowCount returns the number of rows found in the body at construction.
func (t *TableView) RowCount() int {
	return len(t.rows)
}

// CellAt returns the cell in column label of the rowNumber-th body row
// (1-based).
//
// Unlike every other query, CellAt asks the live body for "tr[n]/td[m]"
// rather than reading the stored rows, so it observes rows added, removed
// or reordered after construction. rowNumber is not checked against
// RowCount; an out-of-range row surfaces the provider's own not-found error.
func (t *TableView) CellAt(label string, rowNumber int) (Element, error) {
	pos, err := t.ColumnIndex(label)
	if err != nil {
		return nil, err
	}

	cell, err := t.body.FindPath(fmt.Sprintf("tr[%d]/%s", rowNumber, cellPath(pos)))
	if err != nil {
		return nil, fmt.Errorf("row %d, column %q: %w", rowNumber, label, err)
	}
	return cell, nil
}

// ColumnValues returns the text of column label for every stored row, top to
// bottom. A row without a cell in that column fails the whole read.
func (t *TableView) ColumnValues(label string) ([]string, error) {
	pos, err := t.ColumnIndex(label)
	if err != nil {
		return nil, err
	}

	path := cellPath(pos)
	values := make([]string, 0, len(t.rows))
	for i, row := range t.rows {
		cell, err := row.FindPath(path)
		if err != nil {
			return nil, CellNotFoundError{Column: label, Err: fmt.Errorf("row %d: %w", i+1, err)}
		}
		values = append(values, cell.Text())
	}
	return values, nil
}

// ReadValueInRowContaining finds the first row holding knownValue in any
// column (see FindFirstRow) and returns its text in column label.
func (t *TableView) ReadValueInRowContaining(label, knownValue string) (string, error) {
	row, err := t.FindFirstRow(knownValue)
	if err != nil {
		return "", err
	}

	cell, err := t.CellInRow(row, label)
	if err != nil {
		return "", err
	}
	return cell.Text(), nil
}

// ReadValueWhere finds the first row holding knownValue in column matchLabel
// and returns its text in column readLabel.
func (t *TableView) ReadValueWhere(readLabel, knownValue, matchLabel string) (string, error) {
	row, err := t.FindRow(matchLabel, knownValue)
	if err != nil {
		return "", err
	}

	cell, err := t.CellInRow(row, readLabel)
	if err != nil {
		return "", err
	}
	return cell.Text(), nil
}

// RowValues maps each trimmed header label to row's cell text in that
// column. Columns the row has no cell for are left out. With duplicate
// labels the right-most column wins.
func (t *TableView) RowValues(row Element) (map[string]string, error) {
	values := make(map[string]string, len(t.labels))
	for i, label := range t.labels {
		cell, err := row.FindPath(cellPath(i + 1))
		if errors.Is(err, ErrNoSuchElement) {
			continue
		}
		if err != nil {
			return nil, err
		}
		values[strings.TrimSpace(label)] = cell.Text()
	}
	return values, nil
}

// Records returns the text of every stored row, one entry per header
// position. Missing cells read as the empty string. Rows with no td at all,
// such as a header row the parser placed in the body, are left out, so
// len(Records()) may be less than RowCount().
func (t *TableView) Records() ([][]string, error) {
	records := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		cells, err := row.FindAll("td")
		if err != nil {
			return nil, err
		}
		if len(cells) == 0 {
			continue
		}
		record := make([]string, len(t.headers))
		for i := range t.headers {
			cell, err := row.FindPath(cellPath(i + 1))
			if errors.Is(err, ErrNoSuchElement) {
				continue
			}
			if err != nil {
				return nil, err
			}
			record[i] = cell.Text()
		}
		records = append(records, record)
	}
	return records, nil
}

func cellPath(pos int) string {
	return fmt.Sprintf("td[%d]", pos)
}

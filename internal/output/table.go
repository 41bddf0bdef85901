package output

import "strings"

// Table is tabular data read from a document, printed as a grid in table and
// text formats and as a list of records in structured formats.
type Table struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// Records returns one map per row keyed by trimmed header. Cells beyond the
// last header are dropped.
func (t Table) Records() []map[string]string {
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				rec[strings.TrimSpace(h)] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// column returns the index of the header named name, ignoring case and
// surrounding whitespace, or -1.
func (t Table) column(name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

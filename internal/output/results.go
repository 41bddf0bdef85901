package output

import (
	"context"
	"sort"
	"strings"
)

// ApplyResultOptions applies --result-limit and --result-sort-by/--result-desc
// to list-shaped results. Other values are returned unchanged. The input is
// never modified.
//
// Tables sort by the named column and plain string lists by value whatever
// the field name.
func ApplyResultOptions(ctx context.Context, data interface{}) interface{} {
	limit := LimitFromContext(ctx)
	sortBy, desc := SortFromContext(ctx)
	if limit <= 0 && sortBy == "" {
		return data
	}

	switch v := data.(type) {
	case Table:
		rows := append([][]string(nil), v.Rows...)
		if col := v.column(sortBy); sortBy != "" && col >= 0 {
			sortStable(len(rows), desc, func(i, j int) int {
				return strings.Compare(cellAt(rows[i], col), cellAt(rows[j], col))
			}, func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		}
		return Table{Headers: v.Headers, Rows: truncate(rows, limit)}
	case []string:
		values := append([]string(nil), v...)
		if sortBy != "" {
			sortStable(len(values), desc, func(i, j int) int {
				return strings.Compare(values[i], values[j])
			}, func(i, j int) { values[i], values[j] = values[j], values[i] })
		}
		return truncate(values, limit)
	default:
		return data
	}
}

type swapper struct {
	n    int
	less func(i, j int) bool
	swap func(i, j int)
}

func (s swapper) Len() int           { return s.n }
func (s swapper) Less(i, j int) bool { return s.less(i, j) }
func (s swapper) Swap(i, j int)      { s.swap(i, j) }

func sortStable(n int, desc bool, cmp func(i, j int) int, swap func(i, j int)) {
	sort.Stable(swapper{
		n: n,
		less: func(i, j int) bool {
			if desc {
				return cmp(i, j) > 0
			}
			return cmp(i, j) < 0
		},
		swap: swap,
	})
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && limit < len(s) {
		return s[:limit]
	}
	return s
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// Package table is a small column-ordered result set: what a SQL query returns,
// what the merge step joins, and what the report writers render.
package table

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing column")

// Table holds rows of loosely typed cells in Columns order.
// Cell values are nil, string, int64, float64, bool or time.Time.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given header.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len is the row count.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Missing lists the cols not present, in argument order.
func (t *Table) Missing(cols ...string) []string {
	var out []string
	for _, c := range cols {
		if t.Index(c) < 0 {
			out = append(out, c)
		}
	}
	return out
}

// Append adds a row; it must have one cell per column.
func (t *Table) Append(cells ...any) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// Column returns the cells of col.
func (t *Table) Column(col string) ([]any, error) {
	i := t.Index(col)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
	}
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Select returns a new table with only cols, in that order.
func (t *Table) Select(cols ...string) (*Table, error) {
	if missing := t.Missing(cols...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingColumn, missing)
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
	}
	out := New(cols...)
	out.Rows = make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]any, len(idx))
		for i, j := range idx {
			cells[i] = row[j]
		}
		out.Rows[r] = cells
	}
	return out, nil
}

// Drop returns a new table without cols. Unknown names are ignored.
func (t *Table) Drop(cols ...string) *Table {
	skip := make(map[string]bool, len(cols))
	for _, c := range cols {
		skip[c] = true
	}
	keep := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !skip[c] {
			keep = append(keep, c)
		}
	}
	out, _ := t.Select(keep...)
	return out
}

// SortStableBy orders rows by col ascending, keeping input order for ties.
func (t *Table) SortStableBy(col string) error {
	i := t.Index(col)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, col)
	}
	sort.SliceStable(t.Rows, func(a, b int) bool {
		return Less(t.Rows[a][i], t.Rows[b][i])
	})
	return nil
}

// Group is the subset of rows sharing one key value.
type Group struct {
	Key   any
	Table *Table
}

// GroupBy splits rows by col. Groups are sorted by key; rows keep input order.
func (t *Table) GroupBy(col string) ([]Group, error) {
	i := t.Index(col)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
	}
	byKey := map[string]*Group{}
	var order []*Group
	for _, row := range t.Rows {
		k := Format(row[i])
		g, ok := byKey[k]
		if !ok {
			g = &Group{Key: row[i], Table: New(t.Columns...)}
			byKey[k] = g
			order = append(order, g)
		}
		g.Table.Rows = append(g.Table.Rows, row)
	}
	sort.SliceStable(order, func(a, b int) bool { return Less(order[a].Key, order[b].Key) })
	out := make([]Group, len(order))
	for n, g := range order {
		out[n] = *g
	}
	return out, nil
}

// Records returns one column→value map per row, for JSON embedding.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for r, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for i, c := range t.Columns {
			m[c] = row[i]
		}
		out[r] = m
	}
	return out
}

// FromRecords builds a table with the given column order; keys absent from a
// record become nil cells and keys outside columns are ignored.
func FromRecords(columns []string, records []map[string]any) *Table {
	t := New(columns...)
	for _, rec := range records {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = rec[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Strings renders every cell with Format.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		s := make([]string, len(row))
		for i, v := range row {
			s[i] = Format(v)
		}
		out[r] = s
	}
	return out
}

// Format renders a cell the way the console and spreadsheet show it.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}

// Less orders two cells: numbers numerically, times chronologically,
// everything else by formatted string. nil sorts first.
func Less(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b != nil
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa < fb
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Before(tb)
		}
	}
	return Format(a) < Format(b)
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

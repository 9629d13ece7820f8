package table

import "fmt"

// Merge inner-joins right onto left where left[leftKey] == right[rightKey].
//
// The output keeps every left column, then rightKey (unless it has the same
// name as leftKey) and rightCols. Left row order is preserved and a left row
// matching several right rows is emitted once per match. Any absent join or
// payload column is an error: the caller asked for a shape the data does not have.
func Merge(left, right *Table, leftKey, rightKey string, rightCols ...string) (*Table, error) {
	need := append([]string{rightKey}, rightCols...)
	if missing := right.Missing(need...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: right table lacks %v", ErrMissingColumn, missing)
	}
	li := left.Index(leftKey)
	if li < 0 {
		return nil, fmt.Errorf("%w: left table lacks [%s]", ErrMissingColumn, leftKey)
	}

	carry := need
	if rightKey == leftKey {
		carry = rightCols
	}
	carryIdx := make([]int, len(carry))
	for i, c := range carry {
		carryIdx[i] = right.Index(c)
	}

	cols := append([]string(nil), left.Columns...)
	for _, c := range carry {
		name := c
		for left.Index(name) >= 0 {
			name += "_y"
		}
		cols = append(cols, name)
	}
	out := New(cols...)

	ri := right.Index(rightKey)
	byKey := make(map[string][]int, len(right.Rows))
	for r, row := range right.Rows {
		k := Format(row[ri])
		byKey[k] = append(byKey[k], r)
	}

	for _, lrow := range left.Rows {
		for _, r := range byKey[Format(lrow[li])] {
			cells := make([]any, 0, len(cols))
			cells = append(cells, lrow...)
			for _, j := range carryIdx {
				cells = append(cells, right.Rows[r][j])
			}
			out.Rows = append(out.Rows, cells)
		}
	}
	return out, nil
}

package report

import (
	"math"
	"sort"
	"unicode/utf8"
)

const (
	minColWidth = 10
	maxColWidth = 35
)

// Percentile returns the q-quantile (0..1) of x with linear interpolation
// between closest ranks. NaN for empty input.
func Percentile(x []float64, q float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	pos := q * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (s[hi]-s[lo])*(pos-float64(lo))
}

// ColumnWidth sizes a spreadsheet column from its rendered cells: the 90th
// percentile character count plus 2, clamped to [10, 35].
func ColumnWidth(cells []string) float64 {
	if len(cells) == 0 {
		return minColWidth
	}
	lens := make([]float64, len(cells))
	for i, c := range cells {
		lens[i] = float64(utf8.RuneCountInString(c))
	}
	w := int(Percentile(lens, 0.9)) + 2
	return float64(max(minColWidth, min(maxColWidth, w)))
}

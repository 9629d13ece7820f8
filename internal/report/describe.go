package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/jmehdipour/segment-reports/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Describe renders summary statistics (mean, median, stddev, min, quartiles, max)
// for the spend-score table.
func Describe(scores []model.SpendScore) (string, error) {
	if len(scores) == 0 {
		return "(no rows)\n", nil
	}
	df := dataframe.LoadStructs(scores)
	if df.Err != nil {
		return "", fmt.Errorf("load dataframe: %w", df.Err)
	}
	desc := df.Describe()
	if desc.Err != nil {
		return "", fmt.Errorf("describe: %w", desc.Err)
	}
	return desc.String(), nil
}

// Histogram writes a text histogram of values with the given bin count.
func Histogram(w io.Writer, title string, values []float64, bins int) {
	fmt.Fprintf(w, "\nHistogram of %s\n", title)
	if len(values) == 0 || bins < 1 {
		fmt.Fprintln(w, "(no data)")
		return
	}
	x := append([]float64(nil), values...)
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	// the last divider must be strictly greater than the max value
	hi = math.Nextafter(hi, math.Inf(1))
	if hi <= lo {
		hi = lo + 1
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	counts := stat.Histogram(nil, dividers, x, nil)

	peak := floats.Max(counts)
	for i, c := range counts {
		bar := 0
		if peak > 0 {
			bar = int(math.Round(c / peak * 40))
		}
		fmt.Fprintf(w, "%10.2f - %-10.2f %4d %s\n", dividers[i], dividers[i+1], int(c), strings.Repeat("#", bar))
	}
}

package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jmehdipour/segment-reports/internal/table"
	"github.com/olekukonko/tablewriter"
)

var heading = color.New(color.FgCyan, color.Bold)

// PrintTable writes t as an aligned, borderless text table.
func PrintTable(w io.Writer, t *table.Table) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorder(false)
	tw.SetHeaderLine(false)
	tw.SetColumnSeparator("")
	tw.SetCenterSeparator("")
	tw.SetRowSeparator("")
	tw.SetTablePadding("  ")
	tw.SetNoWhiteSpace(true)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.AppendBulk(t.Strings())
	tw.Render()
}

// PrintGrouped writes one heading plus a table of keyCols per distinct groupCol value:
//
//	=== FilmTitle: ACADEMY DINOSAUR (customers: 23) ===
func PrintGrouped(w io.Writer, t *table.Table, groupCol string, keyCols []string) error {
	groups, err := t.GroupBy(groupCol)
	if err != nil {
		return err
	}
	for _, g := range groups {
		view, err := g.Table.Select(keyCols...)
		if err != nil {
			return err
		}
		_, _ = heading.Fprintf(w, "\n=== %s: %s (customers: %d) ===\n", groupCol, table.Format(g.Key), g.Table.Len())
		PrintTable(w, view)
	}
	return nil
}

// PrintClusters writes each cluster's rows without the label column:
//
//	===== Cluster 2 | 41 customers =====
func PrintClusters(w io.Writer, t *table.Table, clusterCol string) error {
	sorted := &table.Table{Columns: t.Columns, Rows: append([][]any(nil), t.Rows...)}
	if err := sorted.SortStableBy(clusterCol); err != nil {
		return err
	}
	groups, err := sorted.GroupBy(clusterCol)
	if err != nil {
		return err
	}
	for _, g := range groups {
		_, _ = heading.Fprintf(w, "\n===== Cluster %s | %d customers =====\n", table.Format(g.Key), g.Table.Len())
		PrintTable(w, g.Table.Drop(clusterCol))
	}
	return nil
}

// PrintClusterSizes writes a Cluster/Count table, one line per non-empty label.
func PrintClusterSizes(w io.Writer, sizes []int) {
	t := table.New("Cluster", "Count")
	for c, n := range sizes {
		if n > 0 {
			_ = t.Append(c, n)
		}
	}
	fmt.Fprintln(w, "Cluster sizes:")
	PrintTable(w, t)
}

// PrintCentroids writes one row per centroid with the given feature labels.
func PrintCentroids(w io.Writer, features []string, centroids [][]float64) {
	t := table.New(append([]string{"Cluster"}, features...)...)
	for c, cen := range centroids {
		row := []any{c}
		for _, v := range cen {
			row = append(row, fmt.Sprintf("%.3f", v))
		}
		_ = t.Append(row...)
	}
	PrintTable(w, t)
}

// Heading prints a highlighted section title.
func Heading(w io.Writer, format string, args ...any) {
	_, _ = heading.Fprintf(w, format+"\n", args...)
}

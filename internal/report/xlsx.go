package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmehdipour/segment-reports/internal/table"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// GroupedOptions controls ExportGrouped.
type GroupedOptions struct {
	GroupCol  string
	AllSheet  string              // combined sheet, e.g. "All_Customers"
	SheetName func(key any) string // per-group sheet, e.g. "Cluster_2"
}

// ExportSheet writes t as a single-sheet workbook and returns the absolute path.
func ExportSheet(path, sheet string, t *table.Table) (string, error) {
	return writeWorkbook(path, []sheetSpec{{name: sheet, data: t, widthsFrom: t}})
}

// ExportGrouped writes one combined sheet (all rows, ordered by GroupCol) plus
// one sheet per distinct GroupCol value without that column. Column widths
// come from the whole table so every sheet lines up.
func ExportGrouped(path string, t *table.Table, opt GroupedOptions) (string, error) {
	if opt.AllSheet == "" {
		opt.AllSheet = "All"
	}
	if opt.SheetName == nil {
		opt.SheetName = func(key any) string { return opt.GroupCol + "_" + table.Format(key) }
	}

	all := &table.Table{Columns: t.Columns, Rows: append([][]any(nil), t.Rows...)}
	if err := all.SortStableBy(opt.GroupCol); err != nil {
		return "", err
	}
	groups, err := t.GroupBy(opt.GroupCol)
	if err != nil {
		return "", err
	}

	withoutGroup := t.Drop(opt.GroupCol)
	specs := []sheetSpec{{name: opt.AllSheet, data: all, widthsFrom: t}}
	for _, g := range groups {
		specs = append(specs, sheetSpec{
			name:       opt.SheetName(g.Key),
			data:       g.Table.Drop(opt.GroupCol),
			widthsFrom: withoutGroup,
		})
	}
	return writeWorkbook(path, specs)
}

type sheetSpec struct {
	name       string
	data       *table.Table
	widthsFrom *table.Table
}

func writeWorkbook(path string, specs []sheetSpec) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, cell, err := styles(f)
	if err != nil {
		return "", err
	}

	used := map[string]bool{}
	for i, s := range specs {
		name := uniqueSheetName(sanitizeSheetName(s.name), used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return "", fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("new sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, s, header, cell); err != nil {
			return "", fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(abs); err != nil {
		return "", fmt.Errorf("save %s: %w", abs, err)
	}
	return abs, nil
}

func writeSheet(f *excelize.File, sheet string, s sheetSpec, header, cell int) error {
	cols := s.data.Columns
	if len(cols) == 0 {
		return nil
	}

	headerRow := make([]any, len(cols))
	for i, c := range cols {
		headerRow[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}
	for r, row := range s.data.Rows {
		ref, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		cells := append([]any(nil), row...)
		if err := f.SetSheetRow(sheet, ref, &cells); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return err
	}
	if len(s.data.Rows) > 0 {
		bottom, _ := excelize.CoordinatesToCellName(len(cols), len(s.data.Rows)+1)
		if err := f.SetCellStyle(sheet, "A2", bottom, cell); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", header); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheet, 1, 20); err != nil {
		return err
	}

	rendered := s.widthsFrom.Strings()
	for i, c := range cols {
		name, _ := excelize.ColumnNumberToName(i + 1)
		j := s.widthsFrom.Index(c)
		var values []string
		if j >= 0 {
			values = make([]string, len(rendered))
			for r := range rendered {
				values[r] = rendered[r][j]
			}
		}
		if err := f.SetColWidth(sheet, name, name, ColumnWidth(values)); err != nil {
			return err
		}
	}
	return nil
}

func styles(f *excelize.File) (header, cell int, err error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F1F5F9"}},
		Border: border,
	})
	if err != nil {
		return 0, 0, err
	}
	cell, err = f.NewStyle(&excelize.Style{Border: border})
	return header, cell, err
}

// sanitizeSheetName drops characters Excel rejects and enforces the length limit.
func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.Trim(name, "'"))
	if name == "" {
		name = "Sheet"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

// uniqueSheetName suffixes ~N when a truncated or sanitized name collides.
// Excel compares sheet names case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		r := []rune(name)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jmehdipour/segment-reports/internal/model"
	"github.com/jmehdipour/segment-reports/internal/table"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	filmTmpl   = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/film.html"))
	tabbedTmpl = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/tabbed.html"))
)

// Page carries the chrome shared by every HTML report.
type Page struct {
	Title        string
	Heading      string
	RunID        string
	Generated    time.Time
	DownloadHref string // optional link to the companion workbook
}

// FilmCount is one entry of the film selector.
type FilmCount struct {
	FilmTitle string `json:"FilmTitle"`
	Count     int    `json:"Count"`
}

// FilmPage is a film selector with client-side customer search over inline rows.
type FilmPage struct {
	Page
	Rows  []model.FilmCustomer
	Films []FilmCount
}

// NewFilmPage counts customers per film, most rented first (ties by title).
func NewFilmPage(p Page, rows []model.FilmCustomer) FilmPage {
	counts := map[string]int{}
	for _, r := range rows {
		counts[r.FilmTitle]++
	}
	films := make([]FilmCount, 0, len(counts))
	for title, n := range counts {
		films = append(films, FilmCount{FilmTitle: title, Count: n})
	}
	sort.Slice(films, func(i, j int) bool {
		if films[i].Count != films[j].Count {
			return films[i].Count > films[j].Count
		}
		return films[i].FilmTitle < films[j].FilmTitle
	})
	if rows == nil {
		rows = []model.FilmCustomer{}
	}
	return FilmPage{Page: p, Rows: rows, Films: films}
}

// Tab is one group of a TabbedPage.
type Tab struct {
	ID    string
	Label string
	Count int
}

// TabbedPage shows one pill per group; each pane's rows are embedded as JSON
// (Data, keyed by tab ID) and the search box filters the active pane.
type TabbedPage struct {
	Page
	SearchPlaceholder string
	Columns           []string
	Tabs              []Tab
	Data              map[string][][]any
}

// TabbedOptions configures NewTabbedPage.
type TabbedOptions struct {
	GroupCol string
	SortCol  string   // orders the groups; defaults to GroupCol
	Hide     []string // columns left out of the panes
	IDPrefix string
	Label    func(key any) string
}

// NewTabbedPage groups t by GroupCol. Groups appear in SortCol order; an empty
// table yields a page with no tabs.
func NewTabbedPage(p Page, t *table.Table, opt TabbedOptions) (TabbedPage, error) {
	if opt.SortCol == "" {
		opt.SortCol = opt.GroupCol
	}
	if opt.IDPrefix == "" {
		opt.IDPrefix = "tab"
	}
	if opt.Label == nil {
		opt.Label = func(key any) string { return table.Format(key) }
	}
	if missing := t.Missing(opt.GroupCol, opt.SortCol); len(missing) > 0 {
		return TabbedPage{}, fmt.Errorf("%w: %v", table.ErrMissingColumn, missing)
	}

	sorted := &table.Table{Columns: t.Columns, Rows: append([][]any(nil), t.Rows...)}
	if err := sorted.SortStableBy(opt.SortCol); err != nil {
		return TabbedPage{}, err
	}
	view := sorted.Drop(opt.Hide...)
	gi := sorted.Index(opt.GroupCol)

	page := TabbedPage{
		Page:              p,
		SearchPlaceholder: "Search current tab...",
		Columns:           view.Columns,
		Data:              map[string][][]any{},
	}
	seen := map[string]int{}
	for r, row := range sorted.Rows {
		key := table.Format(row[gi])
		n, ok := seen[key]
		if !ok {
			n = len(page.Tabs)
			seen[key] = n
			page.Tabs = append(page.Tabs, Tab{ID: fmt.Sprintf("%s-%d", opt.IDPrefix, n), Label: opt.Label(row[gi])})
		}
		page.Tabs[n].Count++
		id := page.Tabs[n].ID
		page.Data[id] = append(page.Data[id], view.Rows[r])
	}
	return page, nil
}

// Render executes the template matching the page type.
func Render(page any) ([]byte, error) {
	var (
		tmpl *template.Template
		name string
	)
	switch page.(type) {
	case FilmPage, *FilmPage:
		tmpl, name = filmTmpl, "film.html"
	case TabbedPage, *TabbedPage:
		tmpl, name = tabbedTmpl, "tabbed.html"
	default:
		return nil, fmt.Errorf("unsupported page type %T", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteHTML renders page to path and returns the absolute path.
func WriteHTML(path string, page any) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	html, err := Render(page)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", filepath.Base(abs), err)
	}
	if err := os.WriteFile(abs, html, 0o644); err != nil {
		return "", err
	}
	return abs, nil
}

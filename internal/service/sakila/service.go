// Package sakila builds the rental-interest reports over the sakila sample database.
package sakila

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jmehdipour/segment-reports/internal/cluster"
	"github.com/jmehdipour/segment-reports/internal/logger"
	"github.com/jmehdipour/segment-reports/internal/metrics"
	"github.com/jmehdipour/segment-reports/internal/model"
	"github.com/jmehdipour/segment-reports/internal/report"
	"github.com/jmehdipour/segment-reports/internal/repository"
	"github.com/jmehdipour/segment-reports/internal/service"
	"github.com/jmehdipour/segment-reports/internal/sink"
	"github.com/jmehdipour/segment-reports/internal/table"
	"github.com/jmehdipour/segment-reports/internal/util"
	"go.uber.org/zap"
)

const (
	FilmHTML     = "sakila_customers_by_film.html"
	FilmXLSX     = "sakila_customers_by_film.xlsx"
	CategoryHTML = "sakila_customers_by_category.html"
	CategoryXLSX = "sakila_customers_by_category.xlsx"
	ClusterHTML  = "sakila_customers_by_interest_clusters.html"
	ClusterXLSX  = "sakila_customers_clusters.xlsx"
)

var customerCols = []string{"CustomerID", "Name", "Email", "Active"}

// FeatureNames are the clustered columns in Vector order.
var FeatureNames = []string{"Rentals", "DistinctFilms", "DistinctCategories"}

type Options struct {
	OutputDir string
	KMeans    cluster.KMeans
}

// Result summarizes a finished run.
type Result struct {
	RunID  string
	Files  []string
	Sizes  []int
	Opened string
}

// Service runs the film, category and interest-cluster reports in sequence.
type Service struct {
	repo repository.SakilaRepository
	opts Options
	out  io.Writer
	sink sink.Sink
	open service.Opener
	now  func() time.Time
}

// New constructs the sakila report service. sink and open may be nil.
func New(repo repository.SakilaRepository, opts Options, out io.Writer, s sink.Sink, open service.Opener) *Service {
	return &Service{repo: repo, opts: opts, out: out, sink: s, open: open, now: time.Now}
}

func (s *Service) Run(ctx context.Context) (Result, error) {
	start := s.now()
	res := Result{RunID: util.NewRunIDAt(start)}
	o := service.Output{Dir: s.opts.OutputDir, RunID: res.RunID, Now: start, W: s.out}
	if err := o.Prepare(); err != nil {
		return res, err
	}
	log := logger.Log.With(zap.String("run_id", res.RunID), zap.String("report", model.ReportSakilaInterest.String()))
	log.Info("sakila run started")

	files, err := s.films(ctx, o)
	res.Files = append(res.Files, files...)
	if err != nil {
		return res, err
	}

	files, err = s.categories(ctx, o)
	res.Files = append(res.Files, files...)
	if err != nil {
		return res, err
	}

	files, sizes, err := s.clusters(ctx, o)
	res.Files = append(res.Files, files...)
	res.Sizes = sizes
	if err != nil {
		return res, err
	}

	if s.open != nil {
		res.Opened = s.open.OpenFile(o.Path(CategoryHTML))
	}
	metrics.RunSeconds.WithLabelValues(model.ReportSakilaInterest.String()).Observe(s.now().Sub(start).Seconds())
	log.Info("sakila run finished", zap.Int("files", len(res.Files)))
	return res, nil
}

func (s *Service) films(ctx context.Context, o service.Output) ([]string, error) {
	fmt.Fprintln(s.out, ">> Fetching customers by film ...")
	rows, err := s.repo.CustomersByFilm(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "[ERROR] customers by film query failed")
		return nil, fmt.Errorf("customers by film: %w", err)
	}
	service.Fetched("customers_by_film", len(rows))

	t := FilmTable(rows)
	if err := report.PrintGrouped(s.out, t, "FilmTitle", customerCols); err != nil {
		return nil, err
	}

	html, err := o.HTML(FilmHTML, report.NewFilmPage(o.Page("Sakila - Customers by Film", "Sakila - Customers by Film", FilmXLSX), rows))
	if err != nil {
		return nil, err
	}
	xlsx, err := o.Workbook(FilmXLSX, func(path string) (string, error) {
		return report.ExportSheet(path, "CustomersByFilm", t)
	})
	if err != nil {
		return []string{html}, err
	}
	return []string{html, xlsx}, nil
}

func (s *Service) categories(ctx context.Context, o service.Output) ([]string, error) {
	fmt.Fprintln(s.out, "\n>> Fetching customers by category ...")
	rows, err := s.repo.CustomersByCategory(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "[ERROR] customers by category query failed")
		return nil, fmt.Errorf("customers by category: %w", err)
	}
	service.Fetched("customers_by_category", len(rows))

	t := CategoryTable(rows)
	if err := report.PrintGrouped(s.out, t, "Category", customerCols); err != nil {
		return nil, err
	}

	page, err := report.NewTabbedPage(o.Page("Sakila - Customers by Category", "Sakila - Customers by Category", CategoryXLSX), t, report.TabbedOptions{
		GroupCol: "Category",
		Hide:     []string{"CategoryID", "Category"},
		IDPrefix: util.Slug("Category"),
	})
	if err != nil {
		return nil, err
	}
	html, err := o.HTML(CategoryHTML, page)
	if err != nil {
		return nil, err
	}
	xlsx, err := o.Workbook(CategoryXLSX, func(path string) (string, error) {
		return report.ExportGrouped(path, t, report.GroupedOptions{
			GroupCol:  "Category",
			AllSheet:  "CustomersByCategory",
			SheetName: table.Format,
		})
	})
	if err != nil {
		return []string{html}, err
	}
	return []string{html, xlsx}, nil
}

func (s *Service) clusters(ctx context.Context, o service.Output) ([]string, []int, error) {
	fmt.Fprintln(s.out, "\n>> Computing interest features and clustering ...")
	rows, err := s.repo.InterestFeatures(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "[ERROR] interest features query failed")
		return nil, nil, fmt.Errorf("interest features: %w", err)
	}
	service.Fetched("interest_features", len(rows))

	x := make([][]float64, len(rows))
	ids := make([]int64, len(rows))
	for i, r := range rows {
		x[i] = r.Vector()
		ids[i] = r.CustomerID
	}
	z, scaler, err := cluster.StandardScale(x)
	if err != nil {
		return nil, nil, fmt.Errorf("scale features: %w", err)
	}
	fit, err := s.opts.KMeans.Fit(z)
	if err != nil {
		return nil, nil, fmt.Errorf("cluster customers: %w", err)
	}
	sizes := fit.Sizes()
	service.RecordSizes(model.ReportSakilaInterest, sizes)

	report.PrintClusterSizes(s.out, sizes)
	if len(fit.Centroids) > 0 {
		fmt.Fprintln(s.out, "\nCentroids:")
		report.PrintCentroids(s.out, FeatureNames, scaler.Inverse(fit.Centroids))
	}

	t := ClusterTable(rows, fit.Labels)
	page, err := report.NewTabbedPage(o.Page("Sakila - Customers by Interest Clusters", "Sakila - Customers by Interest Clusters", ClusterXLSX), t, report.TabbedOptions{
		GroupCol: "Cluster",
		Hide:     []string{"Cluster"},
		IDPrefix: "cluster",
		Label:    func(k any) string { return "Cluster " + table.Format(k) },
	})
	if err != nil {
		return nil, sizes, err
	}
	html, err := o.HTML(ClusterHTML, page)
	if err != nil {
		return nil, sizes, err
	}
	xlsx, err := o.Workbook(ClusterXLSX, func(path string) (string, error) {
		return report.ExportGrouped(path, t, report.GroupedOptions{
			GroupCol:  "Cluster",
			AllSheet:  "Clusters",
			SheetName: func(k any) string { return "Cluster_" + table.Format(k) },
		})
	})
	if err != nil {
		return []string{html}, sizes, err
	}

	service.Publish(ctx, s.sink, sink.Events(o.RunID, model.ReportSakilaInterest, ids, fit.Labels, x, o.Now))
	return []string{html, xlsx}, sizes, nil
}

// FilmTable lays film rows out in query column order.
func FilmTable(rows []model.FilmCustomer) *table.Table {
	t := table.New("FilmID", "FilmTitle", "CustomerID", "Name", "Email", "Active")
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.FilmID, r.FilmTitle, r.CustomerID, r.Name, r.Email, r.Active})
	}
	return t
}

// CategoryTable lays category rows out in query column order.
func CategoryTable(rows []model.CategoryCustomer) *table.Table {
	t := table.New("CategoryID", "Category", "CustomerID", "Name", "Email", "Active")
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.CategoryID, r.Category, r.CustomerID, r.Name, r.Email, r.Active})
	}
	return t
}

// ClusterTable appends the label to each feature row.
func ClusterTable(rows []model.InterestFeatures, labels []int) *table.Table {
	t := table.New("CustomerID", "Name", "Rentals", "DistinctFilms", "DistinctCategories", "Cluster")
	for i, r := range rows {
		t.Rows = append(t.Rows, []any{r.CustomerID, r.Name, r.Rentals, r.DistinctFilms, r.DistinctCategories, labels[i]})
	}
	return t
}

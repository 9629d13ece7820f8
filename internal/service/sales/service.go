// Package sales segments the salesdatabase customers by age, income and spending score.
package sales

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
	ClusterHTML = "customers_by_cluster.html"
	ClusterXLSX = "customers_by_cluster.xlsx"

	// join columns of the label table
	LabelKey = "CustomerId"
	LabelCol = "cluster"

	histogramBins = 32
)

// Features are clustered in this order.
var Features = []string{model.ColAge, model.ColAnnualIncome, model.ColSpendingScore}

// PlotFeatures drive the elbow sweep and the raw 2-D clustering.
var PlotFeatures = []string{model.ColAge, model.ColSpendingScore}

type Options struct {
	OutputDir   string
	K           int    // scaled 3-feature clustering
	PlotK       int    // raw 2-feature clustering shown with Plots
	CustomerKey string // join column on the customer table
	KMeans      cluster.KMeans
	Plots       bool
}

// Result summarizes a finished run.
type Result struct {
	RunID  string
	Files  []string
	Sizes  []int
	Merged *table.Table
	Opened string
}

type Service struct {
	repo repository.SalesRepository
	opts Options
	out  io.Writer
	sink sink.Sink
	open service.Opener
	now  func() time.Time
}

// New constructs the sales report service. sink and open may be nil.
func New(repo repository.SalesRepository, opts Options, out io.Writer, s sink.Sink, open service.Opener) *Service {
	if opts.CustomerKey == "" {
		opts.CustomerKey = "CustomerID"
	}
	return &Service{repo: repo, opts: opts, out: out, sink: s, open: open, now: time.Now}
}

func (s *Service) Run(ctx context.Context) (Result, error) {
	start := s.now()
	res := Result{RunID: util.NewRunIDAt(start)}
	o := service.Output{Dir: s.opts.OutputDir, RunID: res.RunID, Now: start, W: s.out}
	if err := o.Prepare(); err != nil {
		return res, err
	}
	log := logger.Log.With(zap.String("run_id", res.RunID), zap.String("report", model.ReportSalesSpend.String()))
	log.Info("sales run started", zap.Bool("plots", s.opts.Plots))

	customers, err := s.repo.AllCustomers(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "[ERROR] customer query failed")
		return res, fmt.Errorf("all customers: %w", err)
	}
	service.Fetched("all_customers", customers.Len())
	report.Heading(s.out, ">> customer (%d rows)", customers.Len())
	report.PrintTable(s.out, customers)

	scores, err := s.repo.SpendScores(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "[ERROR] spend score query failed")
		return res, fmt.Errorf("spend scores: %w", err)
	}
	service.Fetched("spend_scores", len(scores))
	report.Heading(s.out, "\n>> customer_spend_score (%d rows)", len(scores))
	report.PrintTable(s.out, ScoreTable(scores))

	desc, err := report.Describe(scores)
	if err != nil {
		return res, err
	}
	report.Heading(s.out, "\n>> describe")
	fmt.Fprint(s.out, desc)

	if s.opts.Plots {
		if err := s.plots(scores); err != nil {
			return res, err
		}
	}

	x := Matrix(scores, Features)
	z, scaler, err := cluster.StandardScale(x)
	if err != nil {
		return res, fmt.Errorf("scale features: %w", err)
	}
	km := s.opts.KMeans
	km.K = s.opts.K
	fit, err := km.Fit(z)
	if err != nil {
		return res, fmt.Errorf("cluster customers: %w", err)
	}
	res.Sizes = fit.Sizes()
	service.RecordSizes(model.ReportSalesSpend, res.Sizes)

	report.Heading(s.out, "\n>> k-means k=%d on scaled %v", s.opts.K, Features)
	report.PrintClusterSizes(s.out, res.Sizes)
	if len(fit.Centroids) > 0 {
		fmt.Fprintln(s.out, "\nCentroids:")
		report.PrintCentroids(s.out, Features, scaler.Inverse(fit.Centroids))
	}

	merged, err := MergeLabels(customers, scores, fit.Labels, s.opts.CustomerKey)
	if err != nil {
		return res, err
	}
	res.Merged = merged
	if err := report.PrintClusters(s.out, merged, LabelCol); err != nil {
		return res, err
	}

	xlsx, err := o.Workbook(ClusterXLSX, func(path string) (string, error) {
		return report.ExportGrouped(path, merged, report.GroupedOptions{
			GroupCol:  LabelCol,
			AllSheet:  "All_Customers",
			SheetName: func(k any) string { return "Cluster_" + table.Format(k) },
		})
	})
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, xlsx)
	fmt.Fprintf(s.out, "Excel saved to: %s\n", xlsx)

	page, err := report.NewTabbedPage(o.Page("Customers by Cluster", "Customer Clusters", ClusterXLSX), merged, report.TabbedOptions{
		GroupCol: LabelCol,
		Hide:     []string{LabelCol},
		IDPrefix: "tab",
		Label:    func(k any) string { return "Cluster " + table.Format(k) },
	})
	if err != nil {
		return res, err
	}
	page.SearchPlaceholder = "Search current cluster..."
	html, err := o.HTML(ClusterHTML, page)
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, html)
	fmt.Fprintf(s.out, "HTML saved to: %s\n", html)

	service.Publish(ctx, s.sink, sink.Events(res.RunID, model.ReportSalesSpend, ids(scores), fit.Labels, x, start))

	if s.open != nil {
		res.Opened = s.open.OpenFile(html)
	}
	metrics.RunSeconds.WithLabelValues(model.ReportSalesSpend.String()).Observe(s.now().Sub(start).Seconds())
	log.Info("sales run finished", zap.Int("files", len(res.Files)))
	return res, nil
}

// plots prints text stand-ins for the histogram, elbow and 2-D scatter charts.
func (s *Service) plots(scores []model.SpendScore) error {
	for _, col := range Features {
		report.Histogram(s.out, col, Column(scores, col), histogramBins)
	}

	raw := Matrix(scores, PlotFeatures)
	points, err := cluster.Elbow(raw, s.opts.KMeans, 1, 10)
	if err != nil {
		return fmt.Errorf("elbow: %w", err)
	}
	report.Heading(s.out, "\n>> Elbow method %v", PlotFeatures)
	elbow := table.New("Clusters", "Inertia")
	for _, p := range points {
		_ = elbow.Append(p.K, fmt.Sprintf("%.2f", p.Inertia))
	}
	report.PrintTable(s.out, elbow)

	if len(raw) < s.opts.PlotK {
		return nil
	}
	km := s.opts.KMeans
	km.K = s.opts.PlotK
	fit, err := km.Fit(raw)
	if err != nil {
		return fmt.Errorf("cluster %v: %w", PlotFeatures, err)
	}
	report.Heading(s.out, "\n>> Clusters of Customers - Age X Spending Score (k=%d)", s.opts.PlotK)
	report.PrintClusterSizes(s.out, fit.Sizes())
	report.PrintCentroids(s.out, PlotFeatures, fit.Centroids)
	return nil
}

// MergeLabels inner-joins the labels, keyed by spend-score customer id, onto
// the customer table. A missing join column is an error.
func MergeLabels(customers *table.Table, scores []model.SpendScore, labels []int, customerKey string) (*table.Table, error) {
	records := make([]map[string]any, len(scores))
	for i, sc := range scores {
		records[i] = map[string]any{LabelKey: sc.CustomerID, LabelCol: labels[i]}
	}
	merged, err := table.Merge(customers, table.FromRecords([]string{LabelKey, LabelCol}, records), customerKey, LabelKey, LabelCol)
	if err != nil {
		return nil, fmt.Errorf("merge cluster labels: %w", err)
	}
	return merged, nil
}

// ScoreTable shows spend scores with their report column names.
func ScoreTable(scores []model.SpendScore) *table.Table {
	t := table.New(append([]string{LabelKey}, Features...)...)
	for _, sc := range scores {
		t.Rows = append(t.Rows, []any{sc.CustomerID, sc.Age, sc.AnnualIncome, sc.SpendingScore})
	}
	return t
}

// Matrix extracts cols (report names) from every score, in order.
func Matrix(scores []model.SpendScore, cols []string) [][]float64 {
	x := make([][]float64, len(scores))
	for i, sc := range scores {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j], _ = sc.Value(c)
		}
		x[i] = row
	}
	return x
}

func Column(scores []model.SpendScore, col string) []float64 {
	out := make([]float64, len(scores))
	for i, sc := range scores {
		out[i], _ = sc.Value(col)
	}
	return out
}

func ids(scores []model.SpendScore) []int64 {
	out := make([]int64, len(scores))
	for i, sc := range scores {
		out[i] = sc.CustomerID
	}
	return out
}

// Package service holds what the report jobs share: output paths, page chrome
// and the post-run hooks (sinks, launcher).
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jmehdipour/segment-reports/internal/logger"
	"github.com/jmehdipour/segment-reports/internal/metrics"
	"github.com/jmehdipour/segment-reports/internal/model"
	"github.com/jmehdipour/segment-reports/internal/report"
	"github.com/jmehdipour/segment-reports/internal/sink"
	"go.uber.org/zap"
)

// Opener shows a finished report; *launcher.Launcher satisfies it.
type Opener interface {
	OpenFile(path string) string
}

// Output writes one run's files into Dir.
type Output struct {
	Dir   string
	RunID string
	Now   time.Time
	W     io.Writer // progress lines
}

func (o Output) Path(name string) string {
	return filepath.Join(o.Dir, name)
}

// Page returns the chrome for a report; download names the companion workbook.
func (o Output) Page(title, heading, download string) report.Page {
	return report.Page{Title: title, Heading: heading, RunID: o.RunID, Generated: o.Now, DownloadHref: download}
}

func (o Output) Prepare() error {
	if o.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// HTML renders page into name.
func (o Output) HTML(name string, page any) (string, error) {
	fmt.Fprintf(o.W, "\n>> Writing HTML: %s\n", name)
	abs, err := report.WriteHTML(o.Path(name), page)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	metrics.ReportsWritten.WithLabelValues("html").Inc()
	logger.Log.Info("report written", zap.String("format", "html"), zap.String("path", abs))
	return abs, nil
}

// Workbook runs export against name's path.
func (o Output) Workbook(name string, export func(path string) (string, error)) (string, error) {
	fmt.Fprintf(o.W, ">> Writing Excel: %s\n", name)
	abs, err := export(o.Path(name))
	if err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	metrics.ReportsWritten.WithLabelValues("xlsx").Inc()
	logger.Log.Info("report written", zap.String("format", "xlsx"), zap.String("path", abs))
	return abs, nil
}

// Fetched records a query's row count.
func Fetched(query string, n int) {
	metrics.RowsFetched.WithLabelValues(query).Add(float64(n))
	logger.Log.Info("query done", zap.String("query", query), zap.Int("rows", n))
}

// RecordSizes publishes per-cluster counts for the report.
func RecordSizes(kind model.ReportKind, sizes []int) {
	metrics.ClusterSize.DeletePartialMatch(map[string]string{"report": kind.String()})
	for c, n := range sizes {
		metrics.ClusterSize.WithLabelValues(kind.String(), fmt.Sprint(c)).Set(float64(n))
	}
}

// Publish hands the run's assignments to s. Sink failures are logged and
// counted but never fail a run whose reports are already on disk.
func Publish(ctx context.Context, s sink.Sink, events []model.AssignmentEvent) {
	if s == nil || len(events) == 0 {
		return
	}
	if err := s.Publish(ctx, events); err != nil {
		logger.Log.Warn("assignments not fully published", zap.Error(err))
	}
}

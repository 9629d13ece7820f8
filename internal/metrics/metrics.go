package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RowsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segrpt_rows_fetched_total",
			Help: "Rows read from the source databases by query",
		},
		[]string{"query"}, // customers_by_film|customers_by_category|interest_features|all_customers|spend_scores
	)

	ReportsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segrpt_reports_written_total",
			Help: "Report files written by format",
		},
		[]string{"format"}, // html|xlsx
	)

	ClusterSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "segrpt_cluster_size",
			Help: "Customers per cluster in the latest run",
		},
		[]string{"report", "cluster"},
	)

	RunSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "segrpt_run_seconds",
			Help:    "Wall time of a report run",
			Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"report"},
	)

	SinkFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segrpt_sink_failures_total",
			Help: "Assignment publishes that failed by sink",
		},
		[]string{"sink"},
	)

	PreviewRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segrpt_preview_requests_total",
			Help: "Preview server requests by status code",
		},
		[]string{"code"},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		RowsFetched,
		ReportsWritten,
		ClusterSize,
		RunSeconds,
		SinkFailures,
		PreviewRequests,
	)
}

// WriteTextfile dumps g in the node_exporter textfile format. An empty path is a no-op.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, g)
}

// Package sink ships cluster assignments out of a report run.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/segment-reports/internal/logger"
	"github.com/jmehdipour/segment-reports/internal/metrics"
	"github.com/jmehdipour/segment-reports/internal/model"
	"go.uber.org/zap"
)

// Sink receives every assignment of one run in a single call.
type Sink interface {
	Name() string
	Publish(ctx context.Context, events []model.AssignmentEvent) error
}

// Fanout publishes to each sink in order. A failing sink does not stop the
// others; the joined error names every failure.
type Fanout []Sink

func (f Fanout) Name() string { return "fanout" }

func (f Fanout) Publish(ctx context.Context, events []model.AssignmentEvent) error {
	var errs []error
	for _, s := range f {
		if err := s.Publish(ctx, events); err != nil {
			metrics.SinkFailures.WithLabelValues(s.Name()).Inc()
			logger.Log.Error("sink publish failed", zap.String("sink", s.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		logger.Log.Info("sink published", zap.String("sink", s.Name()), zap.Int("assignments", len(events)))
	}
	return errors.Join(errs...)
}

// Events pairs labels with the customer ids and feature rows they were fitted on.
// features may be nil.
func Events(runID string, report model.ReportKind, ids []int64, labels []int, features [][]float64, at time.Time) []model.AssignmentEvent {
	out := make([]model.AssignmentEvent, len(labels))
	for i, l := range labels {
		ev := model.AssignmentEvent{Assignment: model.Assignment{
			RunID:      runID,
			Report:     report,
			CustomerID: ids[i],
			Cluster:    l,
			CreatedAt:  at,
		}}
		if features != nil {
			ev.Features = features[i]
		}
		out[i] = ev
	}
	return out
}

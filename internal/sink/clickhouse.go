package sink

import (
	"context"

	"github.com/jmehdipour/segment-reports/internal/model"
	"github.com/jmehdipour/segment-reports/internal/repository"
)

// ClickHouse archives assignments in the cluster_assignments table.
type ClickHouse struct {
	repo repository.AssignmentsRepository
}

func NewClickHouse(repo repository.AssignmentsRepository) *ClickHouse {
	return &ClickHouse{repo: repo}
}

func (c *ClickHouse) Name() string { return "clickhouse" }

func (c *ClickHouse) Publish(ctx context.Context, events []model.AssignmentEvent) error {
	rows := make([]model.Assignment, len(events))
	for i, e := range events {
		rows[i] = e.Assignment
	}
	return c.repo.InsertBatch(ctx, rows)
}

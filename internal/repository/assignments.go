package repository

import (
	"context"
	"fmt"

	"github.com/jmehdipour/segment-reports/internal/model"
	"github.com/jmoiron/sqlx"
)

// AssignmentsRepository stores cluster labels in ClickHouse.
type AssignmentsRepository interface {
	InsertBatch(ctx context.Context, rows []model.Assignment) error
}

type chAssignmentsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewAssignmentsRepository(ch *sqlx.DB) AssignmentsRepository {
	return &chAssignmentsRepository{ch: ch}
}

// InsertBatch sends rows as one ClickHouse block: clickhouse-go buffers the
// prepared statement rows and flushes them on Commit.
func (r *chAssignmentsRepository) InsertBatch(ctx context.Context, rows []model.Assignment) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.ch.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO cluster_assignments (run_id, report, customer_id, cluster, created_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range rows {
		if _, err := stmt.ExecContext(ctx, a.RunID, a.Report.String(), a.CustomerID, int32(a.Cluster), a.CreatedAt); err != nil {
			return fmt.Errorf("append assignment %d: %w", a.CustomerID, err)
		}
	}
	return tx.Commit()
}

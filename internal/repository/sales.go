package repository

import (
	"context"

	"github.com/jmehdipour/segment-reports/internal/model"
	"github.com/jmehdipour/segment-reports/internal/table"
	"github.com/jmoiron/sqlx"
)

// SalesRepository reads the salesdatabase customer tables.
type SalesRepository interface {
	// AllCustomers returns every customer column as stored, untyped.
	AllCustomers(ctx context.Context) (*table.Table, error)
	SpendScores(ctx context.Context) ([]model.SpendScore, error)
}

type SalesRepositoryImpl struct {
	db *sqlx.DB
}

func NewSalesRepository(db *sqlx.DB) *SalesRepositoryImpl {
	return &SalesRepositoryImpl{db: db}
}

var _ SalesRepository = (*SalesRepositoryImpl)(nil)

const spendScoresQuery = `
	SELECT DISTINCT
	       customer.CustomerId AS CustomerId,
	       Age                 AS Age,
	       Annual_Income       AS AnnualIncome,
	       Spending_Score      AS SpendingScore
	  FROM customer, customer_spend_score
	 WHERE customer.CustomerId = customer_spend_score.CustomerID
`

func (r *SalesRepositoryImpl) AllCustomers(ctx context.Context) (*table.Table, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT * FROM customer`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return table.FromRows(rows)
}

// SpendScores joins customers to their spend score rows.
func (r *SalesRepositoryImpl) SpendScores(ctx context.Context) ([]model.SpendScore, error) {
	var rows []model.SpendScore
	if err := r.db.SelectContext(ctx, &rows, spendScoresQuery); err != nil {
		return nil, err
	}
	return rows, nil
}

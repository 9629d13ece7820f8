package model

// SpendScore is one customer's row from customer ⨝ customer_spend_score.
type SpendScore struct {
	CustomerID    int64   `db:"CustomerId"    json:"CustomerId"    dataframe:"CustomerId"`
	Age           float64 `db:"Age"           json:"Age"           dataframe:"Age"`
	AnnualIncome  float64 `db:"AnnualIncome"  json:"AnnualIncome"  dataframe:"Annual Income"`
	SpendingScore float64 `db:"SpendingScore" json:"SpendingScore" dataframe:"Spending Score"`
}

// Feature column labels as printed in the sales reports.
const (
	ColAge           = "Age"
	ColAnnualIncome  = "Annual Income"
	ColSpendingScore = "Spending Score"
)

// Value returns the named feature, or false for an unknown column.
func (s SpendScore) Value(col string) (float64, bool) {
	switch col {
	case ColAge:
		return s.Age, true
	case ColAnnualIncome:
		return s.AnnualIncome, true
	case ColSpendingScore:
		return s.SpendingScore, true
	default:
		return 0, false
	}
}

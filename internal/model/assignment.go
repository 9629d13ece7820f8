package model

import "time"

type ReportKind string

const (
	ReportSakilaInterest ReportKind = "sakila_interest"
	ReportSalesSpend     ReportKind = "sales_spend"
)

func (k ReportKind) String() string { return string(k) }

func (k ReportKind) Valid() bool {
	switch k {
	case ReportSakilaInterest, ReportSalesSpend:
		return true
	default:
		return false
	}
}

// Assignment is a cluster label attached to one customer in one run.
// Labels carry no meaning across runs; RunID scopes them.
type Assignment struct {
	RunID      string     `db:"run_id"      json:"run_id"`
	Report     ReportKind `db:"report"      json:"report"`
	CustomerID int64      `db:"customer_id" json:"customer_id"`
	Cluster    int        `db:"cluster"     json:"cluster"`
	CreatedAt  time.Time  `db:"created_at"  json:"created_at"`
}

// AssignmentEvent is the payload published to Kafka per assignment.
type AssignmentEvent struct {
	Assignment
	Features []float64 `json:"features,omitempty"`
}

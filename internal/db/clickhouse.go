package db

import (
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
)

// NewClickHouseConnection opens the archive connection used by the assignments sink.
// DSN e.g. clickhouse://default:@localhost:9000/segments?dial_timeout=5s
func NewClickHouseConnection(opts Opts) (*sqlx.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("empty ClickHouse DSN")
	}
	return open("clickhouse", opts, 3*time.Second)
}

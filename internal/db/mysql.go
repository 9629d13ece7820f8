package db

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// NewMySQLConnection opens a *sqlx.DB against one of the report databases.
// parseTime is forced on so DATETIME columns scan into time.Time.
func NewMySQLConnection(opts Opts) (*sqlx.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("empty MySQL DSN")
	}
	dsn, err := normalizeMySQLDSN(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse MySQL DSN: %w", err)
	}
	opts.DSN = dsn
	return open("mysql", opts, 5*time.Second)
}

// DatabaseName returns the schema named in a MySQL DSN, for log lines.
func DatabaseName(dsn string) string {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return ""
	}
	return c.DBName
}

func normalizeMySQLDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	c.ParseTime = true
	return c.FormatDSN(), nil
}

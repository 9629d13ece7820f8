package cmd

import (
	"fmt"

	"github.com/jmehdipour/segment-reports/internal/db"
	"github.com/jmehdipour/segment-reports/migrations"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the demo salesdatabase schema (dev: DROP & CREATE) and the ClickHouse archive table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		sqlDB, err := connectMySQL("salesdatabase", cfg.Databases.Sales)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
			return fmt.Errorf("disable fk checks: %w", err)
		}
		if err := apply(sqlDB, migrations.MySQL); err != nil {
			_, _ = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")
			return err
		}
		if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1"); err != nil {
			return fmt.Errorf("enable fk checks: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ">> MySQL migration complete ✅")

		if cfg.ClickHouse.Enabled {
			ch, err := db.NewClickHouseConnection(db.OptsFrom(cfg.ClickHouse.DatabaseConfig))
			if err != nil {
				return fmt.Errorf("clickhouse connect: %w", err)
			}
			defer ch.Close()
			if err := apply(ch, migrations.ClickHouse); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ">> ClickHouse migration complete ✅")
		}
		return nil
	},
}

func apply(conn *sqlx.DB, dir string) error {
	stmts, err := migrations.Load(dir)
	if err != nil {
		return fmt.Errorf("read %s migrations: %w", dir, err)
	}
	for i, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec %s migration statement %d: %w", dir, i+1, err)
		}
	}
	return nil
}

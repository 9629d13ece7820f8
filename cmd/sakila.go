package cmd

import (
	"fmt"

	"github.com/jmehdipour/segment-reports/internal/launcher"
	"github.com/jmehdipour/segment-reports/internal/repository"
	"github.com/jmehdipour/segment-reports/internal/service/sakila"
	"github.com/spf13/cobra"
)

var sakilaCmd = &cobra.Command{
	Use:   "sakila",
	Short: "Customers by film and category plus interest clusters from the sakila database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		conn, err := connectMySQL("sakila", cfg.Databases.Sakila)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "[ERROR] cannot connect to MySQL 'sakila'; check databases.sakila.dsn")
			return err
		}
		defer conn.Close()

		sinks, closeSinks, err := buildSinks(cfg)
		if err != nil {
			return err
		}
		defer closeSinks()

		km := baseKMeans(cfg.Clustering)
		km.K = cfg.Sakila.K
		svc := sakila.New(
			repository.NewSakilaRepository(conn),
			sakila.Options{OutputDir: cfg.Sakila.OutputDir, KMeans: km},
			cmd.OutOrStdout(),
			sinks,
			launcher.New(cfg),
		)

		res, err := svc.Run(cmd.Context())
		if err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "\n>> sakila reports complete (run %s) ✅\n", res.RunID)
		}
		return finish(cfg, err)
	},
}

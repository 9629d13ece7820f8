package cmd

import (
	"fmt"

	"github.com/jmehdipour/segment-reports/internal/launcher"
	"github.com/jmehdipour/segment-reports/internal/repository"
	"github.com/jmehdipour/segment-reports/internal/service/sales"
	"github.com/spf13/cobra"
)

var showPlots bool

var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Cluster salesdatabase customers by age, income and spending score",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		conn, err := connectMySQL("salesdatabase", cfg.Databases.Sales)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "[ERROR] cannot connect to MySQL 'salesdatabase'; check databases.sales.dsn")
			return err
		}
		defer conn.Close()

		sinks, closeSinks, err := buildSinks(cfg)
		if err != nil {
			return err
		}
		defer closeSinks()

		km := baseKMeans(cfg.Clustering)
		km.MaxIter = cfg.Sales.MaxIter
		svc := sales.New(
			repository.NewSalesRepository(conn),
			sales.Options{
				OutputDir:   cfg.Sales.OutputDir,
				K:           cfg.Sales.K,
				PlotK:       cfg.Sales.PlotK,
				CustomerKey: cfg.Sales.CustomerKey,
				KMeans:      km,
				Plots:       showPlots,
			},
			cmd.OutOrStdout(),
			sinks,
			launcher.New(cfg),
		)

		res, err := svc.Run(cmd.Context())
		if err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "\n>> sales segmentation complete (run %s) ✅\n", res.RunID)
		}
		return finish(cfg, err)
	},
}

func init() {
	salesCmd.Flags().BoolVar(&showPlots, "plots", false, "print histogram, elbow and 2-D cluster summaries")
}

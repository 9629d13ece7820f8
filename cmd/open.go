package cmd

import (
	"fmt"

	"github.com/jmehdipour/segment-reports/internal/launcher"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <report.html>",
	Short: "Open a generated report through the preview server, or as a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		l := launcher.New(cfg)
		l.Enabled = true
		if target := l.OpenFile(args[0]); target != "" {
			fmt.Fprintln(cmd.OutOrStdout(), target)
		}
		return nil
	},
}

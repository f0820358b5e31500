// Package cmd holds the anavsan cobra commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// NewRootCmd creates the root cobra command for anavsan.
// Bare invocation opens the dashboard in a TTY and prints the overview
// otherwise.
func NewRootCmd(v string) *cobra.Command {
	version = v

	root := &cobra.Command{
		Use:   "anavsan",
		Short: "Anavsan: Snowflake spend console",
		Long:  "Anavsan shows warehouse, query and storage spend, AI savings recommendations and your subscription.",
		RunE:  runDefault,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newDashboardCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newOverviewCmd())
	root.AddCommand(newPlansCmd())
	root.AddCommand(newQuoteCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newQueriesCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newReceiptCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().StringP("config", "c", "", "path to config file")

	return root
}

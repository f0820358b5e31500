package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runDefault implements the bare `anavsan` behavior: the dashboard when
// both stdin and stdout are terminals, the plain overview otherwise.
func runDefault(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runOverview(cmd, args)
	}
	return runDashboard(cmd, args)
}

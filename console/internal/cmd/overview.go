package cmd

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/payment"
)

func newOverviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Print spend headlines, top warehouses and the subscription",
		Args:  cobra.NoArgs,
		RunE:  runOverview,
	}
}

func runOverview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, newLogger(cfg.Logging, cmd.ErrOrStderr(), nil), nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	o := a.data.Summarize()
	_, _ = fmt.Fprintf(out, "Spend:       %s (%.0f credits)\n", payment.Money(o.Spend), o.Credits)
	_, _ = fmt.Fprintf(out, "Warehouses:  %d running of %d, %d accounts\n", o.RunningWarehouse, len(a.data.Warehouses), o.Accounts)
	_, _ = fmt.Fprintf(out, "Queries:     %s (%d failed)\n", humanize.Comma(int64(o.Queries)), o.FailedQueries)
	_, _ = fmt.Fprintf(out, "Storage:     %s\n", humanize.IBytes(uint64(o.StorageBytes)))
	_, _ = fmt.Fprintf(out, "Savings:     %s/mo across %d recommendations\n", payment.Money(o.PotentialSavings), len(a.data.Recommendations))
	_, _ = fmt.Fprintf(out, "Unread:      %d notifications\n", a.inbox.Unread())
	_, _ = fmt.Fprintln(out)

	if err := writeTopWarehouses(out, a.data.Warehouses, 5); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out)
	writeSubscription(out, a.account.Snapshot())
	return nil
}

func writeTopWarehouses(out io.Writer, warehouses []catalog.Warehouse, n int) error {
	top := slices.Clone(warehouses)
	slices.SortFunc(top, func(a, b catalog.Warehouse) int { return b.Cost.Cmp(a.Cost) })
	top = top[:min(n, len(top))]

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WAREHOUSE\tSIZE\tSTATE\tCOST")
	for _, wh := range top {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", wh.Name, wh.Size, wh.State, payment.Money(wh.Cost))
	}
	return w.Flush()
}

func writeSubscription(out io.Writer, sub billing.Subscription) {
	spec := billing.MustLookup(sub.Plan)
	_, _ = fmt.Fprintf(out, "Plan:        %s (%s, %s)\n", spec.Name, sub.BillingCycle(), sub.Status)
	_, _ = fmt.Fprintf(out, "Seats:       %d\n", sub.Seats)
	if !sub.CurrentPeriodEnd.IsZero() {
		_, _ = fmt.Fprintf(out, "Renews:      %s\n", sub.CurrentPeriodEnd.Format("January 2, 2006"))
	}
	if sub.HasPending() {
		_, _ = fmt.Fprintf(out, "Pending:     %s on %s\n",
			billing.MustLookup(sub.PendingPlan).Name, sub.PendingEffective.Format("January 2, 2006"))
	}
}

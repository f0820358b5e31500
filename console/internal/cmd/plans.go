package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/payment"
)

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List plans and prices",
		Args:  cobra.NoArgs,
		RunE:  runPlans,
	}
}

func runPlans(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PLAN\tNAME\tSEATS\tMONTHLY\tYEARLY (PER MONTH)")
	for _, spec := range billing.Catalog {
		seats := fmt.Sprint(spec.IncludedSeats)
		if spec.Unlimited() {
			seats = "unlimited"
		}
		monthly, yearly := payment.Money(spec.Monthly), payment.Money(spec.Yearly)
		if spec.Plan == billing.Enterprise {
			monthly, yearly = "contact sales", "contact sales"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", spec.Plan, spec.Name, seats, monthly, yearly)
	}
	return w.Flush()
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <plan>",
		Short: "Show price, tax and total for a plan",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuote,
	}
	cmd.Flags().String("cycle", "monthly", "billing cycle: monthly or yearly")
	return cmd
}

func runQuote(cmd *cobra.Command, args []string) error {
	plan, err := billing.ParsePlan(args[0])
	if err != nil {
		return err
	}
	cycle, err := cycleFlag(cmd)
	if err != nil {
		return err
	}
	q, err := payment.QuoteFor(plan, cycle)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if q.Custom {
		_, _ = fmt.Fprintln(out, q.Summary()+". Contact sales for a quote.")
		return nil
	}
	if plan == billing.Trial {
		return errors.New("the trial is free and cannot be purchased")
	}
	_, _ = fmt.Fprintf(out, "Plan:   %s (%s)\n", billing.MustLookup(plan).Name, q.Cycle)
	_, _ = fmt.Fprintf(out, "Price:  %s/mo\n", payment.Money(q.Price))
	_, _ = fmt.Fprintf(out, "Tax:    %s/mo\n", payment.Money(q.Tax))
	if q.Cycle == billing.Yearly {
		_, _ = fmt.Fprintf(out, "Months: %d\n", q.Months)
	}
	_, _ = fmt.Fprintf(out, "Total:  %s\n", payment.Money(q.Total))
	return nil
}

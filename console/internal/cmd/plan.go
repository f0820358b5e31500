package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/receipt"
	"github.com/anavsan/anavsan/pkg/cli"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show or change the subscription",
		Args:  cobra.NoArgs,
		RunE:  runPlanShow,
	}

	selectCmd := &cobra.Command{
		Use:   "select [plan]",
		Short: "Select a plan: upgrade through checkout, schedule a downgrade or switch cycle",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlanSelect,
	}
	selectCmd.Flags().String("cycle", "", "billing cycle: monthly or yearly (default: current)")
	selectCmd.Flags().String("method", "", "payment method: card or cashapp (prompted when empty)")
	selectCmd.Flags().BoolP("yes", "y", false, "confirm without prompting")

	cmd.AddCommand(selectCmd)
	return cmd
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, newLogger(cfg.Logging, cmd.ErrOrStderr(), nil), nil)
	if err != nil {
		return err
	}
	writeSubscription(cmd.OutOrStdout(), a.account.Snapshot())
	return nil
}

// runPlanSelect walks one plan selection through the subscription state
// machine with line prompts in place of the dashboard's dialogs.
func runPlanSelect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, newLogger(cfg.Logging, cmd.ErrOrStderr(), nil), nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := &cli.Prompter{In: cmd.InOrStdin(), Out: out}
	yes, _ := cmd.Flags().GetBool("yes")
	confirm := func(q string) bool { return yes || p.Confirm(q, false) }

	sub := a.account.Snapshot()
	var plan billing.Plan
	if len(args) == 1 {
		if plan, err = billing.ParsePlan(args[0]); err != nil {
			return err
		}
	} else {
		names := make([]string, len(billing.Catalog))
		current := 0
		for i, spec := range billing.Catalog {
			names[i] = spec.Name
			if spec.Plan == sub.Plan {
				current = i
			}
		}
		plan = billing.Catalog[p.Choose("Select a plan:", names, current)].Plan
	}

	cycle := sub.BillingCycle()
	if s, _ := cmd.Flags().GetString("cycle"); s != "" {
		if cycle, err = billing.ParseCycle(s); err != nil {
			return err
		}
	}

	d := a.account.Select(plan, cycle)
	switch d.Action {
	case billing.Unavailable:
		return errors.New(d.Reason)

	case billing.ContactSales:
		_, _ = fmt.Fprintln(out, "Enterprise plans are priced by our sales team. Contact sales@anavsan.com.")
		return nil

	case billing.ConfirmDowngrade:
		preview, err := billing.ScheduleDowngrade(sub, d.Plan, a.now())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "You keep %s until %s, then move to %s.\n",
			billing.MustLookup(sub.Plan).Name, preview.PendingEffective.Format("January 2, 2006"), billing.MustLookup(d.Plan).Name)
		if !confirm(fmt.Sprintf("Downgrade to %s?", billing.MustLookup(d.Plan).Name)) {
			_, _ = fmt.Fprintln(out, "Nothing changed.")
			return nil
		}
		if err := a.account.ConfirmDowngrade(d.Plan); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "Downgrade scheduled.")

	case billing.ConfirmCycleSwitch:
		q, err := payment.QuoteFor(sub.Plan, d.Cycle)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Switching to %s billing. Next charge: %s.\n", d.Cycle, payment.Money(q.Total))
		if !confirm(fmt.Sprintf("Switch to %s billing?", d.Cycle)) {
			_, _ = fmt.Fprintln(out, "Nothing changed.")
			return nil
		}
		if err := a.account.SwitchCycle(d.Cycle); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Billing cycle switched to %s.\n", d.Cycle)

	case billing.Checkout:
		if err := checkoutPlain(cmd, a, p, d, confirm); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(out)
	writeSubscription(out, a.account.Snapshot())
	return nil
}

// checkoutPlain runs the three payment steps as prompts: method and pay,
// success, then the receipt.
func checkoutPlain(cmd *cobra.Command, a *app, p *cli.Prompter, d billing.Decision, confirm func(string) bool) error {
	out := cmd.OutOrStdout()
	flow := payment.NewFlow(a.account.Commit)
	if err := flow.Open(d.Plan, d.Cycle); err != nil {
		return err
	}
	defer flow.Close()

	q := flow.Quote()
	_, _ = fmt.Fprintln(out, q.Summary())

	method := payment.Card
	if s, _ := cmd.Flags().GetString("method"); s != "" {
		m, err := payment.ParseMethod(s)
		if err != nil {
			return err
		}
		method = m
	} else {
		labels := make([]string, len(payment.Methods))
		for i, m := range payment.Methods {
			labels[i] = m.Label()
		}
		method = payment.Methods[p.Choose("Payment method:", labels, 0)]
	}
	if err := flow.SelectMethod(method); err != nil {
		return err
	}

	if !confirm(fmt.Sprintf("Pay %s with %s?", payment.Money(q.Total), method.Label())) {
		_, _ = fmt.Fprintln(out, "Checkout canceled.")
		return nil
	}
	_, _ = fmt.Fprintln(out, "Processing payment...")
	if err := flow.Submit(cmd.Context(), a.gateway()); err != nil {
		return fmt.Errorf("payment failed: %w", err)
	}

	r := flow.Receipt()
	_, _ = fmt.Fprintf(out, "Payment successful. Receipt %s.\n\n", r.Number)
	if err := flow.ViewReceipt(); err != nil {
		return err
	}
	_, _ = io.WriteString(out, r.Text())
	path, err := receipt.NewGenerator(receipt.DefaultIssuer).Save(a.cfg.Payment.ReceiptDir, r)
	if err != nil {
		a.logger.Warn("receipt not saved", "error", err)
	} else {
		_, _ = fmt.Fprintf(out, "\nSaved %s\n", path)
	}
	if err := flow.Back(); err != nil {
		return err
	}
	return flow.Done()
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/receipt"
)

func newReceiptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt <plan>",
		Short: "Render a sample receipt PDF for a plan without changing the subscription",
		Args:  cobra.ExactArgs(1),
		RunE:  runReceipt,
	}
	cmd.Flags().String("cycle", "monthly", "billing cycle: monthly or yearly")
	cmd.Flags().String("method", "card", "payment method: card or cashapp")
	cmd.Flags().StringP("output", "o", "", "PDF path (default: <receipt_dir>/<number>.pdf)")
	return cmd
}

func runReceipt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	plan, err := billing.ParsePlan(args[0])
	if err != nil {
		return err
	}
	cycle, err := cycleFlag(cmd)
	if err != nil {
		return err
	}
	s, _ := cmd.Flags().GetString("method")
	method, err := payment.ParseMethod(s)
	if err != nil {
		return err
	}

	// A flow without a success callback charges the instant gateway and
	// leaves the account alone.
	flow := payment.NewFlow(nil)
	if err := flow.Open(plan, cycle); err != nil {
		if errors.Is(err, payment.ErrNotSelfServe) {
			return fmt.Errorf("%s has no self-serve receipt: %w", plan, err)
		}
		return err
	}
	defer flow.Close()
	if err := flow.SelectMethod(method); err != nil {
		return err
	}
	if err := flow.Submit(cmd.Context(), &payment.SimulatedGateway{}); err != nil {
		return err
	}
	r := flow.Receipt()

	gen := receipt.NewGenerator(receipt.DefaultIssuer)
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		path, err := gen.Save(cfg.Payment.ReceiptDir, r)
		if err != nil {
			return err
		}
		out = path
	} else {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := gen.Write(f, r); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Receipt %s (%s) written to %s\n", r.Number, payment.Money(r.Total), out)
	return nil
}

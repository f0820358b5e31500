package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anavsan/anavsan/console/internal/billing"
)

// Line is one invoice line.
type Line struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Receipt is a paid invoice.
type Receipt struct {
	Number      string          `json:"number"`
	SessionID   string          `json:"session_id"`
	Plan        billing.Plan    `json:"plan"`
	Cycle       billing.Cycle   `json:"billing_cycle"`
	Method      Method          `json:"method"`
	Lines       []Line          `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	PaidAt      time.Time       `json:"paid_at"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
}

// NewReceipt itemises a successful charge. The plan and tax lines are
// repeated per billed month, so a yearly receipt shows twelve months.
func NewReceipt(c Charge, paidAt time.Time) *Receipt {
	q := c.Quote
	months := decimal.NewFromInt(int64(max(q.Months, 1)))
	name := string(q.Plan)
	if spec, err := billing.Lookup(q.Plan); err == nil {
		name = spec.Name
	}

	lines := []Line{
		{
			Description: fmt.Sprintf("%s plan (%s)", name, q.Cycle),
			Quantity:    max(q.Months, 1),
			UnitPrice:   q.Price,
			Amount:      q.Price.Mul(months),
		},
		{
			Description: fmt.Sprintf("Sales tax (%s%%)", TaxRate.Mul(decimal.NewFromInt(100)).String()),
			Quantity:    max(q.Months, 1),
			UnitPrice:   q.Tax,
			Amount:      q.Tax.Mul(months),
		},
	}
	return &Receipt{
		Number:      newInvoiceNumber(paidAt),
		SessionID:   c.SessionID,
		Plan:        q.Plan,
		Cycle:       q.Cycle,
		Method:      c.Method,
		Lines:       lines,
		Subtotal:    lines[0].Amount,
		Tax:         lines[1].Amount,
		Total:       q.Total,
		PaidAt:      paidAt,
		PeriodStart: paidAt,
		PeriodEnd:   billing.NextPeriodEnd(paidAt, q.Cycle),
	}
}

// Text renders the receipt as plain text for terminals and logs.
func (r *Receipt) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Receipt %s   PAID\n", r.Number)
	fmt.Fprintf(&b, "Date: %s   Method: %s\n", r.PaidAt.Format("Jan 2, 2006"), r.Method.Label())
	fmt.Fprintf(&b, "Period: %s to %s\n\n", r.PeriodStart.Format("Jan 2, 2006"), r.PeriodEnd.Format("Jan 2, 2006"))
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%-28s %3d × %9s %11s\n", l.Description, l.Quantity, Money(l.UnitPrice), Money(l.Amount))
	}
	fmt.Fprintf(&b, "\n%-44s %11s\n", "Subtotal", Money(r.Subtotal))
	fmt.Fprintf(&b, "%-44s %11s\n", "Tax", Money(r.Tax))
	fmt.Fprintf(&b, "%-44s %11s\n", "Total", Money(r.Total))
	return b.String()
}

func newInvoiceNumber(at time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("INV-%s-%s", at.Format("200601"), id[:8])
}

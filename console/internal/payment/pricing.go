package payment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/anavsan/anavsan/console/internal/billing"
)

// TaxRate is applied to the per-month rate.
var TaxRate = decimal.RequireFromString("0.08")

// Quote is the computed price of a plan and cycle. Price and Tax are per
// month; Total is what is charged for the whole period.
type Quote struct {
	Plan   billing.Plan    `json:"plan"`
	Cycle  billing.Cycle   `json:"billing_cycle"`
	Price  decimal.Decimal `json:"price"`
	Tax    decimal.Decimal `json:"tax"`
	Total  decimal.Decimal `json:"total"`
	Months int             `json:"months"`
	Custom bool            `json:"custom,omitempty"` // priced by sales
}

// Price is the per-month rate of plan on cycle; zero for unpriced plans.
func Price(plan billing.Plan, cycle billing.Cycle) decimal.Decimal {
	spec, err := billing.Lookup(plan)
	if err != nil {
		return decimal.Zero
	}
	return spec.Rate(cycle)
}

// QuoteFor computes price, tax and total:
//
//	tax   = price * 0.08
//	total = price + tax            (monthly)
//	total = (price + tax) * 12     (yearly)
//
// The yearly rate is already a monthly equivalent, so the yearly total is
// twelve discounted months each carrying its own tax.
func QuoteFor(plan billing.Plan, cycle billing.Cycle) (Quote, error) {
	spec, err := billing.Lookup(plan)
	if err != nil {
		return Quote{}, err
	}
	cycle = cycle.Normalize()
	price := spec.Rate(cycle)
	tax := price.Mul(TaxRate)
	total := price.Add(tax)
	if cycle == billing.Yearly {
		total = total.Mul(decimal.NewFromInt(12))
	}
	return Quote{
		Plan:   plan,
		Cycle:  cycle,
		Price:  price,
		Tax:    tax,
		Total:  total,
		Months: cycle.Months(),
		Custom: plan == billing.Enterprise,
	}, nil
}

// Money formats d as dollars with two decimals.
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Summary is a one-line description of the quote.
func (q Quote) Summary() string {
	if q.Custom {
		return fmt.Sprintf("%s: custom pricing", q.Plan)
	}
	if q.Cycle == billing.Yearly {
		return fmt.Sprintf("%s yearly: %s/mo + %s tax × 12 = %s", q.Plan, Money(q.Price), Money(q.Tax), Money(q.Total))
	}
	return fmt.Sprintf("%s monthly: %s + %s tax = %s", q.Plan, Money(q.Price), Money(q.Tax), Money(q.Total))
}

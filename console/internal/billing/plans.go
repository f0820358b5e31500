package billing

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Plan is a subscription tier.
type Plan string

const (
	Trial      Plan = "trial"
	Individual Plan = "individual"
	Team       Plan = "team"
	Enterprise Plan = "enterprise"
)

// Cycle is a billing cycle. The zero value behaves as Monthly.
type Cycle string

const (
	Monthly Cycle = "monthly"
	Yearly  Cycle = "yearly"
)

// Normalize maps the empty cycle to Monthly.
func (c Cycle) Normalize() Cycle {
	if c == "" {
		return Monthly
	}
	return c
}

// Months is the number of months billed per period.
func (c Cycle) Months() int {
	if c.Normalize() == Yearly {
		return 12
	}
	return 1
}

// Other returns the opposite cycle.
func (c Cycle) Other() Cycle {
	if c.Normalize() == Yearly {
		return Monthly
	}
	return Yearly
}

// Status is the subscription status.
type Status string

const (
	Active   Status = "active"
	PastDue  Status = "past_due"
	Canceled Status = "canceled"
	Trialing Status = "trialing"
)

// UnlimitedSeats marks a plan without a seat cap.
const UnlimitedSeats = math.MaxInt32

// PlanSpec is the catalog entry for a plan. Monthly and Yearly are both
// per-month rates; Yearly is the discounted rate billed twelve at a time.
type PlanSpec struct {
	Plan             Plan            `json:"plan"`
	Name             string          `json:"name"`
	Tagline          string          `json:"tagline"`
	IncludedSeats    int             `json:"included_seats"`
	Monthly          decimal.Decimal `json:"monthly"`
	Yearly           decimal.Decimal `json:"yearly"`
	ExtraSeatMonthly decimal.Decimal `json:"extra_seat_monthly,omitzero"`
	SelfServe        bool            `json:"self_serve"`
	Features         []string        `json:"features"`
}

// Rate is the per-month price for the given cycle.
func (p PlanSpec) Rate(c Cycle) decimal.Decimal {
	if c.Normalize() == Yearly {
		return p.Yearly
	}
	return p.Monthly
}

// Unlimited reports whether the plan has no seat cap.
func (p PlanSpec) Unlimited() bool { return p.IncludedSeats >= UnlimitedSeats }

// Catalog lists every plan in display order.
var Catalog = []PlanSpec{
	{
		Plan:          Trial,
		Name:          "Trial",
		Tagline:       "14 days of full visibility",
		IncludedSeats: 1,
		Monthly:       decimal.Zero,
		Yearly:        decimal.Zero,
		Features:      []string{"1 Snowflake account", "Cost overview", "7-day query history"},
	},
	{
		Plan:          Individual,
		Name:          "Individual",
		Tagline:       "For a single engineer tuning spend",
		IncludedSeats: 1,
		Monthly:       decimal.NewFromInt(49),
		Yearly:        decimal.NewFromInt(39),
		SelfServe:     true,
		Features:      []string{"3 Snowflake accounts", "AI recommendations", "90-day query history"},
	},
	{
		Plan:             Team,
		Name:             "Team",
		Tagline:          "Shared cost ownership for data teams",
		IncludedSeats:    5,
		Monthly:          decimal.NewFromInt(239),
		Yearly:           decimal.NewFromInt(199),
		ExtraSeatMonthly: decimal.NewFromInt(39),
		SelfServe:        true,
		Features:         []string{"Unlimited accounts", "Team consumption", "Budget alerts", "1-year query history"},
	},
	{
		Plan:          Enterprise,
		Name:          "Enterprise",
		Tagline:       "Custom contracts and SSO",
		IncludedSeats: UnlimitedSeats,
		Monthly:       decimal.Zero,
		Yearly:        decimal.Zero,
		Features:      []string{"Everything in Team", "SSO & SCIM", "Dedicated support"},
	},
}

// Lookup returns the catalog entry for a plan.
func Lookup(p Plan) (PlanSpec, error) {
	for _, spec := range Catalog {
		if spec.Plan == p {
			return spec, nil
		}
	}
	return PlanSpec{}, fmt.Errorf("%w: %q", ErrUnknownPlan, p)
}

// MustLookup is Lookup for plans known at compile time.
func MustLookup(p Plan) PlanSpec {
	spec, err := Lookup(p)
	if err != nil {
		panic(err)
	}
	return spec
}

// ParsePlan accepts a plan name in any case.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if _, err := Lookup(p); err != nil {
		return "", err
	}
	return p, nil
}

// ParseCycle accepts "monthly"/"yearly" (and "month"/"year"); empty is monthly.
func ParseCycle(s string) (Cycle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monthly", "month":
		return Monthly, nil
	case "yearly", "year", "annual":
		return Yearly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCycle, s)
	}
}

func seats(p Plan) int {
	spec, err := Lookup(p)
	if err != nil {
		return 0
	}
	return spec.IncludedSeats
}

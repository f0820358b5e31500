// Package billing holds the plan catalog, the subscription state machine and
// the seat policy.
package billing

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownPlan         = errors.New("unknown plan")
	ErrUnknownCycle        = errors.New("unknown billing cycle")
	ErrNotDowngrade        = errors.New("target plan is not a downgrade")
	ErrDowngradePending    = errors.New("a downgrade is already scheduled")
	ErrNoPendingChange     = errors.New("no pending plan change")
	ErrSameCycle           = errors.New("billing cycle unchanged")
	ErrInvalidSubscription = errors.New("invalid subscription")
)

// Subscription is the account's billing state. A scheduled change sits in
// PendingPlan until PendingEffective and never alters Plan before then.
type Subscription struct {
	Plan             Plan      `json:"plan"`
	Status           Status    `json:"status"`
	Cycle            Cycle     `json:"billing_cycle,omitempty"`
	Seats            int       `json:"seats"`
	CurrentPeriodEnd time.Time `json:"current_period_end,omitzero"`
	PendingPlan      Plan      `json:"pending_plan,omitempty"`
	PendingEffective time.Time `json:"pending_plan_effective_date,omitzero"`
	DowngradePending bool      `json:"is_downgrade_pending"`
}

// BillingCycle is Cycle with the monthly default applied.
func (s Subscription) BillingCycle() Cycle { return s.Cycle.Normalize() }

// HasPending reports whether a plan change is scheduled.
func (s Subscription) HasPending() bool { return s.PendingPlan != "" }

// Validate checks the subscription invariants.
func (s Subscription) Validate() error {
	if _, err := Lookup(s.Plan); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubscription, err)
	}
	switch s.Status {
	case Active, PastDue, Canceled, Trialing:
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidSubscription, s.Status)
	}
	switch s.Cycle {
	case "", Monthly, Yearly:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidSubscription, ErrUnknownCycle, s.Cycle)
	}
	if s.Seats < 0 {
		return fmt.Errorf("%w: negative seats", ErrInvalidSubscription)
	}
	if (s.PendingPlan == "") != s.PendingEffective.IsZero() {
		return fmt.Errorf("%w: pending plan and effective date must be set together", ErrInvalidSubscription)
	}
	if s.PendingPlan != "" {
		if _, err := Lookup(s.PendingPlan); err != nil {
			return fmt.Errorf("%w: pending: %w", ErrInvalidSubscription, err)
		}
	}
	if s.DowngradePending {
		if s.PendingPlan == "" || seats(s.PendingPlan) >= seats(s.Plan) {
			return fmt.Errorf("%w: downgrade flag without a smaller pending plan", ErrInvalidSubscription)
		}
	}
	return nil
}

// NextPeriodEnd is one billing period after from.
func NextPeriodEnd(from time.Time, c Cycle) time.Time {
	if c.Normalize() == Yearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// periodEnd is the end of the current period, rolling forward from now when
// the stored end is missing or already past.
func (s Subscription) periodEnd(now time.Time) time.Time {
	if !s.CurrentPeriodEnd.IsZero() && s.CurrentPeriodEnd.After(now) {
		return s.CurrentPeriodEnd
	}
	end := s.CurrentPeriodEnd
	if end.IsZero() {
		end = now
	}
	for !end.After(now) {
		end = NextPeriodEnd(end, s.BillingCycle())
	}
	return end
}

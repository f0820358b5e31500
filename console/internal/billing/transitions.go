package billing

import (
	"fmt"
	"time"
)

// Action is what selecting a plan leads to.
type Action int

const (
	// Unavailable means the control is disabled for this selection.
	Unavailable Action = iota
	ContactSales
	ConfirmDowngrade
	ConfirmCycleSwitch
	Checkout
)

var actionNames = [...]string{
	Unavailable:        "unavailable",
	ContactSales:       "contact_sales",
	ConfirmDowngrade:   "confirm_downgrade",
	ConfirmCycleSwitch: "confirm_cycle_switch",
	Checkout:           "checkout",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Decision is the outcome of SelectPlan.
type Decision struct {
	Action Action
	Plan   Plan
	Cycle  Cycle
	Reason string // set for Unavailable
}

// SelectPlan decides what clicking target/cycle on the plan page does. It
// never mutates current.
func SelectPlan(current Subscription, target Plan, cycle Cycle) Decision {
	cycle = cycle.Normalize()
	d := Decision{Plan: target, Cycle: cycle}

	if _, err := Lookup(target); err != nil {
		d.Reason = err.Error()
		return d
	}

	switch {
	case target == Enterprise:
		d.Action = ContactSales
	case target == Trial:
		d.Reason = "trial cannot be selected"
	case seats(target) < seats(current.Plan):
		if current.DowngradePending {
			d.Reason = fmt.Sprintf("downgrade to %s already scheduled", current.PendingPlan)
			break
		}
		d.Action = ConfirmDowngrade
	case target == current.Plan && cycle != current.BillingCycle():
		d.Action = ConfirmCycleSwitch
	case target == current.Plan:
		d.Reason = "current plan"
	default:
		d.Action = Checkout
	}
	return d
}

// ScheduleDowngrade records target as the pending plan effective at the end
// of the current billing period. Plan and cycle are left untouched.
func ScheduleDowngrade(sub Subscription, target Plan, now time.Time) (Subscription, error) {
	if _, err := Lookup(target); err != nil {
		return sub, err
	}
	if sub.DowngradePending {
		return sub, ErrDowngradePending
	}
	if seats(target) >= seats(sub.Plan) {
		return sub, fmt.Errorf("%w: %s to %s", ErrNotDowngrade, sub.Plan, target)
	}
	sub.PendingPlan = target
	sub.PendingEffective = sub.periodEnd(now)
	sub.DowngradePending = true
	return sub, nil
}

// CancelPendingDowngrade clears the scheduled change only.
func CancelPendingDowngrade(sub Subscription) (Subscription, error) {
	if !sub.HasPending() {
		return sub, ErrNoPendingChange
	}
	sub.PendingPlan = ""
	sub.PendingEffective = time.Time{}
	sub.DowngradePending = false
	return sub, nil
}

// SwitchCycle replaces the billing cycle immediately. No payment is taken.
func SwitchCycle(sub Subscription, cycle Cycle) (Subscription, error) {
	switch cycle {
	case Monthly, Yearly:
	default:
		return sub, fmt.Errorf("%w: %q", ErrUnknownCycle, cycle)
	}
	if sub.BillingCycle() == cycle {
		return sub, ErrSameCycle
	}
	sub.Cycle = cycle
	return sub, nil
}

// Commit applies a paid plan change: the plan and cycle take effect now, the
// subscription becomes active and any scheduled change is dropped.
func Commit(sub Subscription, plan Plan, cycle Cycle, now time.Time) (Subscription, error) {
	if _, err := Lookup(plan); err != nil {
		return sub, err
	}
	sub.Plan = plan
	sub.Cycle = cycle.Normalize()
	sub.Status = Active
	sub.PendingPlan = ""
	sub.PendingEffective = time.Time{}
	sub.DowngradePending = false
	sub.CurrentPeriodEnd = NextPeriodEnd(now, sub.Cycle)
	if sub.Seats < 1 {
		sub.Seats = 1
	}
	return sub, nil
}

// ActivatePending promotes the pending plan once its effective date has
// arrived. It reports whether anything changed. Member records are not
// touched here.
func ActivatePending(sub Subscription, now time.Time) (Subscription, bool) {
	if !sub.HasPending() || now.Before(sub.PendingEffective) {
		return sub, false
	}
	sub.Plan = sub.PendingPlan
	sub.PendingPlan = ""
	sub.CurrentPeriodEnd = NextPeriodEnd(sub.PendingEffective, sub.BillingCycle())
	sub.PendingEffective = time.Time{}
	sub.DowngradePending = false
	return sub, true
}

package billing

import "github.com/shopspring/decimal"

// SeatDecision summarises seat usage for the team pages.
type SeatDecision struct {
	Included   int             `json:"included"`
	Used       int             `json:"used"`
	Unlimited  bool            `json:"unlimited"`
	CanInvite  bool            `json:"can_invite"`
	NextIsPaid bool            `json:"next_is_paid"` // inviting one more bills an extra seat
	ExtraSeats int             `json:"extra_seats"`
	ExtraCost  decimal.Decimal `json:"extra_cost"` // per month
}

// SeatPolicy applies the plan's seat rules to the active member count.
// Trial and Individual are single-seat without invites; Team bills members
// beyond the included five as extra seats; Enterprise has no cap.
func SeatPolicy(sub Subscription, activeMembers int) SeatDecision {
	spec, err := Lookup(sub.Plan)
	if err != nil {
		return SeatDecision{Used: activeMembers}
	}
	d := SeatDecision{
		Included:  spec.IncludedSeats,
		Used:      activeMembers,
		Unlimited: spec.Unlimited(),
		ExtraCost: decimal.Zero,
	}
	switch {
	case d.Unlimited:
		d.CanInvite = true
	case spec.ExtraSeatMonthly.IsPositive():
		d.CanInvite = true
		d.NextIsPaid = activeMembers >= spec.IncludedSeats
		d.ExtraSeats = max(0, activeMembers-spec.IncludedSeats)
		d.ExtraCost = spec.ExtraSeatMonthly.Mul(decimal.NewFromInt(int64(d.ExtraSeats)))
	default:
		d.CanInvite = false
	}
	return d
}

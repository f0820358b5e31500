package billing

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anavsan/anavsan/console/internal/eventbus"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func teamSub() Subscription {
	return Subscription{
		Plan:             Team,
		Status:           Active,
		Cycle:            Monthly,
		Seats:            3,
		CurrentPeriodEnd: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestSelectPlan(t *testing.T) {
	trial := Subscription{Plan: Trial, Status: Trialing}
	indiv := Subscription{Plan: Individual, Status: Active, Cycle: Monthly}
	enterprise := Subscription{Plan: Enterprise, Status: Active, Cycle: Yearly, Seats: 40, CurrentPeriodEnd: now.AddDate(0, 3, 0)}
	pending, err := ScheduleDowngrade(teamSub(), Individual, now)
	require.NoError(t, err)

	tests := []struct {
		name   string
		cur    Subscription
		target Plan
		cycle  Cycle
		want   Action
	}{
		{"enterprise contacts sales", indiv, Enterprise, Monthly, ContactSales},
		{"enterprise to enterprise contacts sales", enterprise, Enterprise, Yearly, ContactSales},
		{"enterprise to team confirms downgrade", enterprise, Team, Monthly, ConfirmDowngrade},
		{"enterprise to individual confirms downgrade", enterprise, Individual, Yearly, ConfirmDowngrade},
		{"trial to team checks out", trial, Team, Monthly, Checkout},
		{"trial to individual checks out", trial, Individual, Yearly, Checkout},
		{"individual to team checks out", indiv, Team, Yearly, Checkout},
		{"team to individual confirms downgrade", teamSub(), Individual, Monthly, ConfirmDowngrade},
		{"team to individual yearly still a downgrade", teamSub(), Individual, Yearly, ConfirmDowngrade},
		{"same plan other cycle switches", indiv, Individual, Yearly, ConfirmCycleSwitch},
		{"zero cycle counts as monthly", Subscription{Plan: Individual, Status: Active}, Individual, Yearly, ConfirmCycleSwitch},
		{"same plan same cycle unavailable", indiv, Individual, Monthly, Unavailable},
		{"trial target unavailable", indiv, Trial, Monthly, Unavailable},
		{"second downgrade unavailable", pending, Individual, Monthly, Unavailable},
		{"unknown plan unavailable", indiv, Plan("gold"), Monthly, Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.cur
			d := SelectPlan(tt.cur, tt.target, tt.cycle)
			assert.Equal(t, tt.want, d.Action, "reason: %s", d.Reason)
			assert.Equal(t, before, tt.cur)
			if d.Action == Unavailable {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestDowngradeSchedulingNeverChangesPlan(t *testing.T) {
	sub := teamSub()

	d := SelectPlan(sub, Individual, Monthly)
	require.Equal(t, ConfirmDowngrade, d.Action)

	next, err := ScheduleDowngrade(sub, Individual, now)
	require.NoError(t, err)
	assert.Equal(t, Team, next.Plan)
	assert.Equal(t, Monthly, next.Cycle)
	assert.Equal(t, Individual, next.PendingPlan)
	assert.True(t, next.DowngradePending)
	assert.Equal(t, sub.CurrentPeriodEnd, next.PendingEffective)
	require.NoError(t, next.Validate())

	cleared, err := CancelPendingDowngrade(next)
	require.NoError(t, err)
	assert.Equal(t, Team, cleared.Plan)
	assert.Empty(t, cleared.PendingPlan)
	assert.True(t, cleared.PendingEffective.IsZero())
	assert.False(t, cleared.DowngradePending)
	assert.Equal(t, sub, cleared)
}

func TestScheduleDowngradeWithoutPeriodEnd(t *testing.T) {
	sub := Subscription{Plan: Team, Status: Active, Seats: 3}
	next, err := ScheduleDowngrade(sub, Individual, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 1, 0), next.PendingEffective)
	assert.Equal(t, Team, next.Plan)
}

func TestScheduleDowngradeFromEnterprise(t *testing.T) {
	end := now.AddDate(0, 3, 0)
	sub := Subscription{Plan: Enterprise, Status: Active, Cycle: Yearly, Seats: 40, CurrentPeriodEnd: end}
	next, err := ScheduleDowngrade(sub, Team, now)
	require.NoError(t, err)
	assert.Equal(t, Enterprise, next.Plan)
	assert.Equal(t, Team, next.PendingPlan)
	assert.Equal(t, end, next.PendingEffective)
}

func TestScheduleDowngradeRejects(t *testing.T) {
	_, err := ScheduleDowngrade(teamSub(), Enterprise, now)
	assert.ErrorIs(t, err, ErrNotDowngrade)

	pending, err := ScheduleDowngrade(teamSub(), Individual, now)
	require.NoError(t, err)
	_, err = ScheduleDowngrade(pending, Individual, now)
	assert.ErrorIs(t, err, ErrDowngradePending)

	_, err = ScheduleDowngrade(teamSub(), Plan("gold"), now)
	assert.ErrorIs(t, err, ErrUnknownPlan)

	_, err = CancelPendingDowngrade(teamSub())
	assert.ErrorIs(t, err, ErrNoPendingChange)
}

func TestSwitchCycle(t *testing.T) {
	sub := teamSub()
	next, err := SwitchCycle(sub, Yearly)
	require.NoError(t, err)
	assert.Equal(t, Yearly, next.Cycle)
	assert.Equal(t, Team, next.Plan)

	_, err = SwitchCycle(next, Yearly)
	assert.ErrorIs(t, err, ErrSameCycle)

	_, err = SwitchCycle(next, Cycle("weekly"))
	assert.ErrorIs(t, err, ErrUnknownCycle)
}

func TestCommit(t *testing.T) {
	trial := Subscription{Plan: Trial, Status: Trialing}
	next, err := Commit(trial, Team, Yearly, now)
	require.NoError(t, err)
	assert.Equal(t, Team, next.Plan)
	assert.Equal(t, Yearly, next.Cycle)
	assert.Equal(t, Active, next.Status)
	assert.Equal(t, 1, next.Seats)
	assert.Equal(t, now.AddDate(1, 0, 0), next.CurrentPeriodEnd)
	require.NoError(t, next.Validate())
}

func TestActivatePending(t *testing.T) {
	pending, err := ScheduleDowngrade(teamSub(), Individual, now)
	require.NoError(t, err)

	same, changed := ActivatePending(pending, pending.PendingEffective.Add(-time.Second))
	assert.False(t, changed)
	assert.Equal(t, Team, same.Plan)

	next, changed := ActivatePending(pending, pending.PendingEffective)
	require.True(t, changed)
	assert.Equal(t, Individual, next.Plan)
	assert.False(t, next.HasPending())
	assert.False(t, next.DowngradePending)
	// Members are not removed on activation.
	assert.Equal(t, 3, next.Seats)
}

func TestValidate(t *testing.T) {
	ok := teamSub()
	require.NoError(t, ok.Validate())

	bad := []Subscription{
		{Plan: "gold", Status: Active},
		{Plan: Team, Status: "paused"},
		{Plan: Team, Status: Active, Cycle: "weekly"},
		{Plan: Team, Status: Active, PendingPlan: Individual},
		{Plan: Team, Status: Active, PendingEffective: now},
		{Plan: Team, Status: Active, DowngradePending: true},
		{Plan: Individual, Status: Active, PendingPlan: Team, PendingEffective: now, DowngradePending: true},
	}
	for _, s := range bad {
		assert.ErrorIs(t, s.Validate(), ErrInvalidSubscription, "%+v", s)
	}
}

func TestSeatPolicy(t *testing.T) {
	d := SeatPolicy(Subscription{Plan: Individual, Status: Active}, 1)
	assert.False(t, d.CanInvite)
	assert.Equal(t, 1, d.Included)

	d = SeatPolicy(Subscription{Plan: Trial, Status: Trialing}, 1)
	assert.False(t, d.CanInvite)

	d = SeatPolicy(teamSub(), 4)
	assert.True(t, d.CanInvite)
	assert.False(t, d.NextIsPaid)
	assert.Zero(t, d.ExtraSeats)

	d = SeatPolicy(teamSub(), 7)
	assert.True(t, d.NextIsPaid)
	assert.Equal(t, 2, d.ExtraSeats)
	assert.True(t, decimal.NewFromInt(78).Equal(d.ExtraCost))

	d = SeatPolicy(Subscription{Plan: Enterprise, Status: Active}, 250)
	assert.True(t, d.Unlimited)
	assert.True(t, d.CanInvite)
}

func TestParse(t *testing.T) {
	p, err := ParsePlan(" Team ")
	require.NoError(t, err)
	assert.Equal(t, Team, p)
	_, err = ParsePlan("gold")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	c, err := ParseCycle("")
	require.NoError(t, err)
	assert.Equal(t, Monthly, c)
	c, err = ParseCycle("annual")
	require.NoError(t, err)
	assert.Equal(t, Yearly, c)
	_, err = ParseCycle("weekly")
	assert.ErrorIs(t, err, ErrUnknownCycle)
}

func TestAccountPublishesTransitions(t *testing.T) {
	bus := eventbus.New()
	events := bus.Subscribe(eventbus.DowngradeScheduled, eventbus.DowngradeCanceled, eventbus.SubscriptionChanged)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	acct, err := NewAccount(teamSub(), logger, WithBus(bus), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	assert.Equal(t, ConfirmDowngrade, acct.Select(Individual, Monthly).Action)
	require.NoError(t, acct.ConfirmDowngrade(Individual))
	snap := acct.Snapshot()
	assert.Equal(t, Team, snap.Plan)
	assert.Equal(t, Individual, snap.PendingPlan)

	e := <-events
	assert.Equal(t, eventbus.DowngradeScheduled, e.Type)
	var published Subscription
	require.NoError(t, e.Decode(&published))
	assert.Equal(t, Individual, published.PendingPlan)

	require.NoError(t, acct.CancelPendingDowngrade())
	assert.Equal(t, eventbus.DowngradeCanceled, (<-events).Type)
	assert.False(t, acct.Snapshot().DowngradePending)

	assert.ErrorIs(t, acct.CancelPendingDowngrade(), ErrNoPendingChange)
	assert.Empty(t, events)

	require.NoError(t, acct.Commit(Enterprise, Yearly))
	assert.Equal(t, eventbus.SubscriptionChanged, (<-events).Type)
	assert.Equal(t, Enterprise, acct.Snapshot().Plan)
}

func TestAccountTick(t *testing.T) {
	clock := now
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	acct, err := NewAccount(teamSub(), logger, WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	require.NoError(t, acct.ConfirmDowngrade(Individual))

	assert.False(t, acct.Tick())
	clock = acct.Snapshot().PendingEffective
	assert.True(t, acct.Tick())
	assert.Equal(t, Individual, acct.Snapshot().Plan)
}

func TestNewAccountRejectsInvalid(t *testing.T) {
	_, err := NewAccount(Subscription{Plan: "gold"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}

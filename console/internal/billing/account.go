package billing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/anavsan/anavsan/console/internal/eventbus"
)

// Account owns the single subscription of the signed-in organisation. All
// mutations go through it so that the dashboard and the API see the same
// state and every transition is logged and published.
type Account struct {
	mu     sync.RWMutex
	sub    Subscription
	bus    *eventbus.Bus
	logger *slog.Logger
	now    func() time.Time
}

// AccountOption configures an Account.
type AccountOption func(*Account)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) AccountOption {
	return func(a *Account) { a.now = now }
}

// WithBus publishes transitions on bus.
func WithBus(bus *eventbus.Bus) AccountOption {
	return func(a *Account) { a.bus = bus }
}

// NewAccount validates sub and wraps it.
func NewAccount(sub Subscription, logger *slog.Logger, opts ...AccountOption) (*Account, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	a := &Account{
		sub:    sub,
		logger: logger.With("component", "billing"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Snapshot returns a copy of the current subscription.
func (a *Account) Snapshot() Subscription {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sub
}

// Select runs SelectPlan against the current subscription.
func (a *Account) Select(target Plan, cycle Cycle) Decision {
	d := SelectPlan(a.Snapshot(), target, cycle)
	a.logger.Debug("plan selected", "target", target, "cycle", cycle, "action", d.Action.String())
	return d
}

// ConfirmDowngrade schedules target for the end of the period.
func (a *Account) ConfirmDowngrade(target Plan) error {
	return a.apply("downgrade scheduled", eventbus.DowngradeScheduled, func(s Subscription) (Subscription, error) {
		return ScheduleDowngrade(s, target, a.now())
	})
}

// CancelPendingDowngrade drops the scheduled change.
func (a *Account) CancelPendingDowngrade() error {
	return a.apply("downgrade canceled", eventbus.DowngradeCanceled, CancelPendingDowngrade)
}

// SwitchCycle changes the billing cycle in place.
func (a *Account) SwitchCycle(cycle Cycle) error {
	return a.apply("billing cycle switched", eventbus.SubscriptionChanged, func(s Subscription) (Subscription, error) {
		return SwitchCycle(s, cycle)
	})
}

// Commit is the payment success callback.
func (a *Account) Commit(plan Plan, cycle Cycle) error {
	return a.apply("plan committed", eventbus.SubscriptionChanged, func(s Subscription) (Subscription, error) {
		return Commit(s, plan, cycle, a.now())
	})
}

// SetSeats records the active member count.
func (a *Account) SetSeats(n int) {
	a.mu.Lock()
	a.sub.Seats = max(n, 0)
	a.mu.Unlock()
}

// Tick activates a pending change whose date has passed.
func (a *Account) Tick() bool {
	a.mu.Lock()
	next, changed := ActivatePending(a.sub, a.now())
	if changed {
		a.sub = next
	}
	a.mu.Unlock()

	if changed {
		a.logger.Info("pending plan activated", "plan", next.Plan)
		a.bus.PublishType(eventbus.SubscriptionChanged, next)
	}
	return changed
}

func (a *Account) apply(msg, event string, fn func(Subscription) (Subscription, error)) error {
	a.mu.Lock()
	prev := a.sub
	next, err := fn(prev)
	if err == nil {
		a.sub = next
	}
	a.mu.Unlock()

	if err != nil {
		a.logger.Debug("transition rejected", "transition", msg, "error", err)
		return err
	}
	a.logger.Info(msg,
		"plan", next.Plan,
		"cycle", next.BillingCycle(),
		"pending_plan", next.PendingPlan,
		"previous_plan", prev.Plan,
	)
	a.bus.PublishType(event, next)
	return nil
}

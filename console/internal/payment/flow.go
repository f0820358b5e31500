// Package payment implements checkout: pricing, the three-step payment
// session, the gateway boundary and receipts.
package payment

import (
	"context"

	"github.com/anavsan/anavsan/console/internal/billing"
)

// Step is a screen of the payment modal.
type Step int

const (
	StepCheckout Step = iota
	StepSuccess
	StepReceipt
)

func (s Step) String() string {
	switch s {
	case StepCheckout:
		return "checkout"
	case StepSuccess:
		return "success"
	case StepReceipt:
		return "receipt"
	default:
		return "unknown"
	}
}

// Ticket identifies one in-flight charge. A ticket from a closed or
// reopened session no longer completes anything.
type Ticket struct {
	gen    uint64
	Ctx    context.Context
	Charge Charge
}

// Flow is one payment modal session. It is owned by a single event loop and
// is not safe for concurrent use.
//
// Steps run checkout → success → receipt, with receipt → success as the only
// back edge. Processing is only ever true on checkout.
type Flow struct {
	onSuccess func(billing.Plan, billing.Cycle) error

	open       bool
	gen        uint64
	step       Step
	method     Method
	processing bool
	fullScreen bool
	committed  bool
	sessionID  string
	quote      Quote
	receipt    *Receipt
	lastErr    error
	cancel     context.CancelFunc
}

// NewFlow returns a closed flow that reports successful payments to
// onSuccess.
func NewFlow(onSuccess func(billing.Plan, billing.Cycle) error) *Flow {
	return &Flow{onSuccess: onSuccess, method: Card}
}

// Open starts a new session for plan and cycle on the checkout step.
func (f *Flow) Open(plan billing.Plan, cycle billing.Cycle) error {
	spec, err := billing.Lookup(plan)
	if err != nil {
		return err
	}
	if !spec.SelfServe {
		return ErrNotSelfServe
	}
	q, err := QuoteFor(plan, cycle)
	if err != nil {
		return err
	}
	f.Close()
	f.open = true
	f.quote = q
	f.sessionID = newSessionID()
	return nil
}

// Close discards the session and cancels any in-flight charge. The next
// Open starts again on checkout.
func (f *Flow) Close() {
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	f.open = false
	f.step = StepCheckout
	f.method = Card
	f.processing = false
	f.fullScreen = false
	f.committed = false
	f.sessionID = ""
	f.quote = Quote{}
	f.receipt = nil
	f.lastErr = nil
	f.cancel = nil
}

func (f *Flow) IsOpen() bool      { return f.open }
func (f *Flow) Step() Step        { return f.step }
func (f *Flow) Method() Method    { return f.method }
func (f *Flow) Processing() bool  { return f.processing }
func (f *Flow) FullScreen() bool  { return f.fullScreen }
func (f *Flow) Quote() Quote      { return f.quote }
func (f *Flow) Receipt() *Receipt { return f.receipt }
func (f *Flow) SessionID() string { return f.sessionID }

// Err is the failure of the last charge, cleared on the next Begin.
func (f *Flow) Err() error { return f.lastErr }

// SelectMethod picks the payment method on checkout.
func (f *Flow) SelectMethod(m Method) error {
	if err := f.guardCheckout(); err != nil {
		return err
	}
	if _, err := ParseMethod(string(m)); err != nil {
		return err
	}
	f.method = m
	return nil
}

// Begin marks the session as processing and returns the ticket to charge
// with. The ticket's context is canceled when the session closes.
func (f *Flow) Begin(ctx context.Context) (Ticket, error) {
	if err := f.guardCheckout(); err != nil {
		return Ticket{}, err
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.processing = true
	f.lastErr = nil
	return Ticket{
		gen: f.gen,
		Ctx: ctx,
		Charge: Charge{
			SessionID: f.sessionID,
			Quote:     f.quote,
			Method:    f.method,
		},
	}, nil
}

// Complete applies the result of a charge started by Begin. It reports
// false, changing nothing, when the ticket's session has since been closed.
// On failure the session stays on checkout so the user can retry.
func (f *Flow) Complete(t Ticket, r *Receipt, err error) bool {
	if !f.open || t.gen != f.gen || !f.processing {
		return false
	}
	f.processing = false
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if err == nil && r == nil {
		err = &Error{Code: CodeInvalid, Message: "gateway returned no receipt"}
	}
	if err != nil {
		f.lastErr = err
		return true
	}
	f.receipt = r
	f.step = StepSuccess
	return true
}

// Submit charges synchronously through gw. It is Begin, Charge and Complete
// in one call for callers without an event loop.
func (f *Flow) Submit(ctx context.Context, gw Gateway) error {
	t, err := f.Begin(ctx)
	if err != nil {
		return err
	}
	r, err := gw.Charge(t.Ctx, t.Charge)
	if !f.Complete(t, r, err) {
		return ErrSuperseded
	}
	return f.lastErr
}

// Done reports the purchase to the success callback, once per session, and
// closes the modal.
func (f *Flow) Done() error {
	if !f.open {
		return ErrNotOpen
	}
	if f.step != StepSuccess {
		return ErrWrongStep
	}
	var err error
	if !f.committed && f.onSuccess != nil {
		f.committed = true
		err = f.onSuccess(f.quote.Plan, f.quote.Cycle)
	}
	f.Close()
	return err
}

// ViewReceipt moves from success to receipt.
func (f *Flow) ViewReceipt() error {
	if !f.open {
		return ErrNotOpen
	}
	if f.step != StepSuccess {
		return ErrWrongStep
	}
	f.step = StepReceipt
	return nil
}

// Back moves from receipt to success. There is no way back to checkout.
func (f *Flow) Back() error {
	if !f.open {
		return ErrNotOpen
	}
	if f.step != StepReceipt {
		return ErrWrongStep
	}
	f.step = StepSuccess
	f.fullScreen = false
	return nil
}

// ToggleFullScreen flips the receipt between modal and full-screen layout.
func (f *Flow) ToggleFullScreen() error {
	if !f.open {
		return ErrNotOpen
	}
	if f.step != StepReceipt {
		return ErrWrongStep
	}
	f.fullScreen = !f.fullScreen
	return nil
}

func (f *Flow) guardCheckout() error {
	switch {
	case !f.open:
		return ErrNotOpen
	case f.processing:
		return ErrProcessing
	case f.step != StepCheckout:
		return ErrWrongStep
	}
	return nil
}

// Package checkout is the payment modal: method selection, the simulated
// charge, the success summary and the receipt.
package checkout

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/tui"
)

// Printer saves a receipt somewhere the user can print it from.
type Printer interface {
	Save(dir string, r *payment.Receipt) (string, error)
}

// Options wires the modal to its collaborators.
type Options struct {
	Gateway    payment.Gateway
	Printer    Printer
	ReceiptDir string
	Logger     *slog.Logger
}

// ClosedMsg is sent when the modal closes. Paid is set when the purchase was
// reported to the subscription; Err carries a failed commit.
type ClosedMsg struct {
	Paid  bool
	Plan  billing.Plan
	Cycle billing.Cycle
	Err   error
}

type chargeResultMsg struct {
	ticket  payment.Ticket
	receipt *payment.Receipt
	err     error
}

type printedMsg struct {
	path string
	err  error
}

// Model renders one payment.Flow. The flow pointer is shared with whoever
// opened the modal.
type Model struct {
	flow    *payment.Flow
	opts    Options
	logger  *slog.Logger
	spinner spinner.Model
	receipt viewport.Model

	cursor int
	notice string
	errMsg string
	width  int
	height int
}

// New returns a closed modal over flow.
func New(flow *payment.Flow, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tui.Selected
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Model{
		flow:    flow,
		opts:    opts,
		logger:  logger.With("component", "checkout"),
		spinner: sp,
		receipt: viewport.New(60, 16),
	}
}

// Open starts a session for plan and cycle.
func (m Model) Open(plan billing.Plan, cycle billing.Cycle) (Model, error) {
	if err := m.flow.Open(plan, cycle); err != nil {
		return m, err
	}
	m.cursor = 0
	m.notice = ""
	m.errMsg = ""
	m.logger.Info("checkout opened", "plan", plan, "cycle", cycle.Normalize(), "session", m.flow.SessionID())
	return m, nil
}

// IsOpen reports whether the modal is showing.
func (m Model) IsOpen() bool { return m.flow.IsOpen() }

// FullScreen reports whether the receipt takes the whole screen.
func (m Model) FullScreen() bool { return m.flow.IsOpen() && m.flow.FullScreen() }

// SetSize records the terminal size.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.resizeReceipt()
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case chargeResultMsg:
		if !m.flow.Complete(msg.ticket, msg.receipt, msg.err) {
			m.logger.Debug("late charge result ignored", "session", msg.ticket.Charge.SessionID)
			return m, nil
		}
		if err := m.flow.Err(); err != nil {
			m.errMsg = describe(err)
			m.logger.Warn("charge failed", "error", err)
			return m, nil
		}
		m.logger.Info("charge succeeded", "receipt", msg.receipt.Number, "total", payment.Money(msg.receipt.Total))
		return m, nil

	case spinner.TickMsg:
		if !m.flow.Processing() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case printedMsg:
		if msg.err != nil {
			m.errMsg = "Could not save receipt: " + msg.err.Error()
			m.logger.Warn("receipt print failed", "error", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.notice = "Saved " + msg.path
		m.logger.Info("receipt saved", "path", msg.path)
		return m, nil

	case tea.KeyMsg:
		if !m.flow.IsOpen() {
			return m, nil
		}
		switch m.flow.Step() {
		case payment.StepCheckout:
			return m.updateCheckout(msg)
		case payment.StepSuccess:
			return m.updateSuccess(msg)
		case payment.StepReceipt:
			return m.updateReceipt(msg)
		}
	}
	return m, nil
}

var (
	keyUp    = key.NewBinding(key.WithKeys("up", "k", "left", "h", "shift+tab"))
	keyDown  = key.NewBinding(key.WithKeys("down", "j", "right", "l", "tab"))
	keyEnter = key.NewBinding(key.WithKeys("enter"))
	keyEsc   = key.NewBinding(key.WithKeys("esc"))
)

func (m Model) updateCheckout(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyEsc):
		m.logger.Info("checkout closed", "session", m.flow.SessionID(), "processing", m.flow.Processing())
		m.flow.Close()
		return m, closed(ClosedMsg{})
	case m.flow.Processing():
		return m, nil
	case key.Matches(msg, keyUp):
		m.selectMethod(m.cursor - 1)
	case key.Matches(msg, keyDown):
		m.selectMethod(m.cursor + 1)
	case key.Matches(msg, keyEnter):
		return m.pay()
	}
	return m, nil
}

func (m *Model) selectMethod(i int) {
	n := len(payment.Methods)
	i = (i%n + n) % n
	if err := m.flow.SelectMethod(payment.Methods[i]); err != nil {
		return
	}
	m.cursor = i
}

func (m Model) pay() (Model, tea.Cmd) {
	t, err := m.flow.Begin(context.Background())
	if err != nil {
		m.errMsg = describe(err)
		return m, nil
	}
	m.errMsg = ""
	m.logger.Info("charge started", "session", t.Charge.SessionID, "method", t.Charge.Method, "total", payment.Money(t.Charge.Quote.Total))
	return m, tea.Batch(m.spinner.Tick, charge(m.opts.Gateway, t))
}

// charge runs the gateway off the event loop and reports back with the
// ticket so that a result for a closed session is dropped.
func charge(gw payment.Gateway, t payment.Ticket) tea.Cmd {
	return func() tea.Msg {
		r, err := gw.Charge(t.Ctx, t.Charge)
		return chargeResultMsg{ticket: t, receipt: r, err: err}
	}
}

func (m Model) updateSuccess(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "d", "esc":
		return m.done()
	case "r":
		if err := m.flow.ViewReceipt(); err == nil {
			m.resizeReceipt()
			m.receipt.GotoTop()
		}
	}
	return m, nil
}

func (m Model) done() (Model, tea.Cmd) {
	q := m.flow.Quote()
	err := m.flow.Done()
	if err != nil {
		m.logger.Error("commit failed", "plan", q.Plan, "cycle", q.Cycle, "error", err)
	}
	m.notice, m.errMsg = "", ""
	return m, closed(ClosedMsg{Paid: err == nil, Plan: q.Plan, Cycle: q.Cycle, Err: err})
}

func (m Model) updateReceipt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b", "backspace":
		_ = m.flow.Back()
		m.notice = ""
		return m, nil
	case "f":
		_ = m.flow.ToggleFullScreen()
		m.resizeReceipt()
		return m, nil
	case "p":
		if m.opts.Printer == nil {
			return m, nil
		}
		r, dir, printer := m.flow.Receipt(), m.opts.ReceiptDir, m.opts.Printer
		return m, func() tea.Msg {
			path, err := printer.Save(dir, r)
			return printedMsg{path: path, err: err}
		}
	}
	var cmd tea.Cmd
	m.receipt, cmd = m.receipt.Update(msg)
	return m, cmd
}

func (m *Model) resizeReceipt() {
	w, h := 64, 16
	if m.flow.IsOpen() && m.flow.FullScreen() && m.width > 0 {
		w, h = m.width-4, m.height-6
	} else if m.width > 0 {
		w = min(64, m.width-10)
		h = min(16, m.height-14)
	}
	m.receipt.Width, m.receipt.Height = max(w, 20), max(h, 4)
	if m.flow.IsOpen() && m.flow.Step() == payment.StepReceipt {
		m.receipt.SetContent(m.receiptView(m.receipt.Width))
	}
}

func closed(msg ClosedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func describe(err error) string {
	if pe, ok := payment.AsError(err); ok {
		var msg string
		switch pe.Code {
		case payment.CodeDeclined:
			msg = "Your payment was declined. Try another method."
		case payment.CodeNetwork:
			msg = "We couldn't reach the payment provider."
		default:
			msg = "Payment could not be completed: " + pe.Message
		}
		if pe.Retryable() {
			msg += " Press enter to retry."
		}
		return msg
	}
	if errors.Is(err, payment.ErrProcessing) {
		return "Payment is already processing."
	}
	return err.Error()
}

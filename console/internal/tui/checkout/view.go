package checkout

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/tui"
)

// View renders the modal; empty when closed.
func (m Model) View() string {
	if !m.flow.IsOpen() {
		return ""
	}
	var body string
	switch m.flow.Step() {
	case payment.StepCheckout:
		body = m.checkoutView()
	case payment.StepSuccess:
		body = m.successView()
	case payment.StepReceipt:
		body = m.receiptFrame()
		if m.flow.FullScreen() {
			return lipgloss.NewStyle().Padding(1, 2).Render(body)
		}
	}
	return tui.Modal.Render(body)
}

func (m Model) checkoutView() string {
	q := m.flow.Quote()
	var b strings.Builder
	b.WriteString(tui.Title.Render("Checkout") + "\n")
	b.WriteString(renderRow("Plan", planName(q.Plan)))
	b.WriteString(renderRow("Billing", cycleLabel(q.Cycle)))
	b.WriteString("\n")
	b.WriteString(priceRows(q))

	b.WriteString("\n" + tui.Subtitle.Render("Payment method") + "\n")
	for i, method := range payment.Methods {
		cursor := "  "
		style := tui.Dimmed
		if i == m.cursor {
			cursor = tui.Selected.Render("> ")
			style = tui.Selected
		}
		b.WriteString(cursor + style.Render(method.Label()) + "\n")
	}

	if m.flow.Processing() {
		b.WriteString("\n" + m.spinner.View() + " Processing payment…\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + tui.ErrorStyle.Render(m.errMsg) + "\n")
	}

	help := "↑/↓ method • enter pay " + payment.Money(q.Total) + " • esc cancel"
	if m.flow.Processing() {
		help = "esc cancel"
	}
	b.WriteString("\n" + tui.Help.Render(help))
	return b.String()
}

func (m Model) successView() string {
	q := m.flow.Quote()
	r := m.flow.Receipt()
	var b strings.Builder
	b.WriteString(tui.Success.Bold(true).Render("✓ Payment successful") + "\n\n")
	b.WriteString(renderRow("Plan", planName(q.Plan)))
	b.WriteString(renderRow("Billing", cycleLabel(q.Cycle)))
	b.WriteString(renderRow("Amount paid", payment.Money(q.Total)))
	if r != nil {
		b.WriteString(renderRow("Invoice", r.Number))
		b.WriteString(renderRow("Method", r.Method.Label()))
		b.WriteString(renderRow("Renews", r.PeriodEnd.Format("Jan 2, 2006")))
	}
	b.WriteString("\n" + tui.Help.Render("enter done • r view receipt"))
	return b.String()
}

func (m Model) receiptFrame() string {
	var b strings.Builder
	b.WriteString(m.receipt.View() + "\n")
	if m.notice != "" {
		b.WriteString(tui.Success.Render(m.notice) + "\n")
	}
	if m.errMsg != "" {
		b.WriteString(tui.ErrorStyle.Render(m.errMsg) + "\n")
	}
	toggle := "f full screen"
	if m.flow.FullScreen() {
		toggle = "f exit full screen"
	}
	b.WriteString(tui.Help.Render("p print • " + toggle + " • ↑/↓ scroll • esc back"))
	return b.String()
}

// receiptView is the invoice body shown inside the viewport.
func (m Model) receiptView(width int) string {
	r := m.flow.Receipt()
	if r == nil {
		return ""
	}
	width = max(width, 40)
	amountW := 12
	descW := width - amountW - 2

	var b strings.Builder
	head := tui.Title.UnsetMarginBottom().Render("Receipt")
	badge := tui.StatusBadge("paid")
	gap := max(1, width-lipgloss.Width(head)-lipgloss.Width(badge))
	b.WriteString(head + strings.Repeat(" ", gap) + badge + "\n")
	b.WriteString(tui.Description.Render(r.Number) + "\n\n")

	b.WriteString(renderRow("Date paid", r.PaidAt.Format("Jan 2, 2006 15:04")))
	b.WriteString(renderRow("Method", r.Method.Label()))
	b.WriteString(renderRow("Period", r.PeriodStart.Format("Jan 2, 2006")+" to "+r.PeriodEnd.Format("Jan 2, 2006")))
	b.WriteString("\n")

	b.WriteString(tui.TableHeader.Width(width).Render(pad("Description", descW)+"  "+lpad("Amount", amountW)) + "\n")
	for _, l := range r.Lines {
		desc := fmt.Sprintf("%s  %d × %s", l.Description, l.Quantity, payment.Money(l.UnitPrice))
		b.WriteString(pad(tui.Truncate(desc, descW), descW) + "  " + lpad(payment.Money(l.Amount), amountW) + "\n")
	}
	b.WriteString(tui.Dimmed.Render(strings.Repeat("─", width)) + "\n")
	b.WriteString(pad("Subtotal", descW) + "  " + lpad(payment.Money(r.Subtotal), amountW) + "\n")
	b.WriteString(pad("Tax", descW) + "  " + lpad(payment.Money(r.Tax), amountW) + "\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(pad("Total", descW)+"  "+lpad(payment.Money(r.Total), amountW)) + "\n")
	return b.String()
}

func priceRows(q payment.Quote) string {
	var b strings.Builder
	b.WriteString(renderRow("Price", payment.Money(q.Price)+"/mo"))
	b.WriteString(renderRow("Tax (8%)", payment.Money(q.Tax)+"/mo"))
	if q.Cycle == billing.Yearly {
		b.WriteString(renderRow("Months", fmt.Sprintf("× %d", q.Months)))
	}
	b.WriteString(renderRow("Total due", lipgloss.NewStyle().Bold(true).Render(payment.Money(q.Total))))
	return b.String()
}

func planName(p billing.Plan) string {
	if spec, err := billing.Lookup(p); err == nil {
		return spec.Name
	}
	return string(p)
}

func cycleLabel(c billing.Cycle) string {
	if c.Normalize() == billing.Yearly {
		return "Yearly (billed annually)"
	}
	return "Monthly"
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(tui.ColorSubtle).
		Width(14)
	return "  " + labelStyle.Render(label) + value + "\n"
}

func pad(s string, w int) string {
	return s + strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
}

func lpad(s string, w int) string {
	return strings.Repeat(" ", max(0, w-lipgloss.Width(s))) + s
}

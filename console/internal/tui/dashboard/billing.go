package dashboard

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/team"
	"github.com/anavsan/anavsan/console/internal/tui"
)

// Your plan.

func (m Model) updatePlan(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "u", "enter":
		m.navigate(PageChangePlan)
	case "c":
		sub := m.opts.Account.Snapshot()
		if !sub.HasPending() {
			return m, nil
		}
		if err := m.opts.Account.CancelPendingDowngrade(); err != nil {
			m.flash(err.Error(), true)
			return m, nil
		}
		m.flash(fmt.Sprintf("Scheduled change to %s canceled. You stay on %s.", planName(sub.PendingPlan), planName(sub.Plan)), false)
	}
	return m, nil
}

func (m Model) planView(width int) string {
	sub := m.opts.Account.Snapshot()
	spec, _ := billing.Lookup(sub.Plan)
	seat := billing.SeatPolicy(sub, m.opts.Roster.SeatsUsed())

	var b strings.Builder
	b.WriteString(tui.Subtitle.Render("Your plan") + "\n\n")

	if sub.HasPending() {
		banner := fmt.Sprintf("Your plan changes to %s on %s. Press c to keep %s.",
			planName(sub.PendingPlan), sub.PendingEffective.Format("January 2, 2006"), spec.Name)
		b.WriteString(lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(tui.ColorWarning).
			PaddingLeft(1).
			Render(tui.WarningStyle.Render(banner)) + "\n\n")
	}

	card := renderRow("Plan", lipgloss.NewStyle().Bold(true).Render(spec.Name)+"  "+tui.StatusBadge(string(sub.Status)))
	card += renderRow("Billing", cycleLabel(sub.BillingCycle()))
	if spec.SelfServe {
		card += renderRow("Price", payment.Money(payment.Price(sub.Plan, sub.BillingCycle()))+"/mo + tax")
	}
	if !sub.CurrentPeriodEnd.IsZero() {
		label := "Renews"
		if sub.Status == billing.Trialing {
			label = "Trial ends"
		}
		card += renderRow(label, sub.CurrentPeriodEnd.Format("January 2, 2006")+tui.Dimmed.Render("  ("+humanize.Time(sub.CurrentPeriodEnd)+")"))
	}
	card += renderRow("Seats", seatSummary(seat))
	b.WriteString(tui.Border.Width(min(64, max(width-4, 30))).Render(strings.TrimRight(card, "\n")) + "\n\n")

	b.WriteString(tui.Subtitle.Render("Invoices") + "\n")
	if len(m.opts.Data.Invoices) == 0 {
		b.WriteString(tui.Dimmed.Render("  No invoices yet") + "\n")
	}
	for _, inv := range m.opts.Data.Invoices {
		b.WriteString(fmt.Sprintf("  %-16s %-14s %10s  %s\n",
			inv.Number, inv.Period, payment.Money(inv.Amount), tui.StatusBadge(inv.Status)))
	}
	hint := "  u change plan"
	if sub.HasPending() {
		hint += " • c cancel scheduled change"
	}
	b.WriteString("\n" + tui.Help.Render(hint))
	return b.String()
}

func seatSummary(s billing.SeatDecision) string {
	switch {
	case s.Unlimited:
		return fmt.Sprintf("%d used, unlimited", s.Used)
	case s.ExtraSeats > 0:
		return fmt.Sprintf("%d of %d included + %d extra (%s/mo)", s.Included, s.Included, s.ExtraSeats, payment.Money(s.ExtraCost))
	default:
		return fmt.Sprintf("%d of %d used", s.Used, s.Included)
	}
}

func cycleLabel(c billing.Cycle) string {
	if c.Normalize() == billing.Yearly {
		return "Yearly (billed annually)"
	}
	return "Monthly"
}

// Change plan.

type changePlanModel struct {
	cursor int
	cycle  billing.Cycle
}

func (m Model) updateChangePlan(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "k", "up":
		if m.change.cursor > 0 {
			m.change.cursor--
		}
	case "right", "l", "j", "down":
		if m.change.cursor < len(billing.Catalog)-1 {
			m.change.cursor++
		}
	case "t", "m":
		m.change.cycle = m.change.cycle.Other()
	case "enter":
		return m.selectPlan(billing.Catalog[m.change.cursor].Plan, m.change.cycle)
	}
	return m, nil
}

// selectPlan runs the subscription decision for a plan card and opens
// whatever it leads to.
func (m Model) selectPlan(target billing.Plan, cycle billing.Cycle) (Model, tea.Cmd) {
	sub := m.opts.Account.Snapshot()
	d := m.opts.Account.Select(target, cycle)

	switch d.Action {
	case billing.Unavailable:
		m.flash(d.Reason, false)

	case billing.ContactSales:
		m.dialog = newInfoDialog("Talk to sales",
			"Enterprise plans are set up with our team: custom contracts, SSO and dedicated support. Write to sales@anavsan.com and we will get back within one business day.")

	case billing.ConfirmDowngrade:
		preview, err := billing.ScheduleDowngrade(sub, d.Plan, m.now())
		if err != nil {
			m.flash(err.Error(), true)
			return m, nil
		}
		dlg := newConfirmDialog(actDowngrade, "Downgrade to "+planName(d.Plan),
			fmt.Sprintf("You keep %s until the end of the current billing period. Members beyond the new seat limit stay until you remove them.", planName(sub.Plan)),
			"Schedule downgrade")
		dlg.rows = [][2]string{
			{"Current plan", planName(sub.Plan)},
			{"New plan", planName(d.Plan)},
			{"Effective", preview.PendingEffective.Format("January 2, 2006")},
		}
		dlg.plan = d.Plan
		m.dialog = dlg

	case billing.ConfirmCycleSwitch:
		q, err := payment.QuoteFor(d.Plan, d.Cycle)
		if err != nil {
			m.flash(err.Error(), true)
			return m, nil
		}
		dlg := newConfirmDialog(actCycleSwitch, "Switch to "+strings.ToLower(cycleLabel(d.Cycle)),
			"The new billing cycle applies right away. No payment is taken now.",
			"Switch cycle")
		dlg.rows = [][2]string{
			{"Plan", planName(d.Plan)},
			{"From", cycleLabel(sub.BillingCycle())},
			{"To", cycleLabel(d.Cycle)},
			{"Next charge", payment.Money(q.Total)},
		}
		dlg.plan, dlg.cycle = d.Plan, d.Cycle
		m.dialog = dlg

	case billing.Checkout:
		co, err := m.checkout.Open(d.Plan, d.Cycle)
		if err != nil {
			m.flash(err.Error(), true)
			return m, nil
		}
		m.checkout = co
	}
	return m, nil
}

func (m Model) changePlanView(width int) string {
	sub := m.opts.Account.Snapshot()

	var b strings.Builder
	b.WriteString(tui.Subtitle.Render("Change plan") + "   ")
	for _, c := range []billing.Cycle{billing.Monthly, billing.Yearly} {
		label := " " + string(c) + " "
		if c == m.change.cycle {
			b.WriteString(tui.Badge.Background(tui.ColorPrimary).Render(label))
		} else {
			b.WriteString(tui.Dimmed.Render(label))
		}
	}
	b.WriteString(tui.Dimmed.Render("  (t to switch)") + "\n\n")

	cardW := max((width-10)/len(billing.Catalog), 18)
	cards := make([]string, 0, len(billing.Catalog))
	for i, spec := range billing.Catalog {
		cards = append(cards, m.planCard(sub, spec, i == m.change.cursor, cardW))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n")
	b.WriteString("\n" + tui.Help.Render("  ←/→ choose • t monthly/yearly • enter select"))
	return b.String()
}

func (m Model) planCard(sub billing.Subscription, spec billing.PlanSpec, selected bool, width int) string {
	d := billing.SelectPlan(sub, spec.Plan, m.change.cycle)

	var price string
	switch {
	case spec.Plan == billing.Enterprise:
		price = "Custom"
	case spec.Plan == billing.Trial:
		price = "Free"
	default:
		price = payment.Money(spec.Rate(m.change.cycle)) + "/mo"
	}

	s := lipgloss.NewStyle().Bold(true).Render(spec.Name)
	if spec.Plan == sub.Plan {
		s += " " + tui.Badge.Background(tui.ColorSecondary).Render("current")
	}
	if spec.Plan == sub.PendingPlan {
		s += " " + tui.Badge.Background(tui.ColorWarning).Render("scheduled")
	}
	s += "\n" + tui.Description.Render(spec.Tagline) + "\n\n"
	s += lipgloss.NewStyle().Bold(true).Foreground(tui.ColorText).Render(price) + "\n"
	if m.change.cycle == billing.Yearly && spec.SelfServe {
		s += tui.Dimmed.Render("billed annually") + "\n"
	}
	s += "\n"
	for _, f := range spec.Features {
		s += tui.Success.Render("✓ ") + f + "\n"
	}
	s += "\n" + actionButton(d)

	border := tui.ColorMuted
	if selected {
		border = tui.ColorPrimary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width).
		Render(s)
}

func actionButton(d billing.Decision) string {
	switch d.Action {
	case billing.ContactSales:
		return tui.Badge.Background(tui.ColorSecondary).Render("Contact sales")
	case billing.ConfirmDowngrade:
		return tui.Badge.Background(tui.ColorWarning).Render("Downgrade")
	case billing.ConfirmCycleSwitch:
		return tui.Badge.Background(tui.ColorPrimary).Render("Switch to " + string(d.Cycle))
	case billing.Checkout:
		return tui.Badge.Background(tui.ColorSuccess).Render("Upgrade")
	default:
		return tui.Dimmed.Render(d.Reason)
	}
}

// Team consumption.

type teamModel struct {
	cursor int
}

func (m Model) updateTeam(msg tea.KeyMsg) (Model, tea.Cmd) {
	members := m.opts.Roster.List()
	switch msg.String() {
	case "j", "down":
		if m.team.cursor < len(members)-1 {
			m.team.cursor++
		}
	case "k", "up":
		if m.team.cursor > 0 {
			m.team.cursor--
		}
	case "i":
		sub := m.opts.Account.Snapshot()
		seat := billing.SeatPolicy(sub, m.opts.Roster.SeatsUsed())
		if !seat.CanInvite {
			m.flash(fmt.Sprintf("The %s plan has a single seat. Upgrade to Team to invite members.", planName(sub.Plan)), false)
			return m, nil
		}
		note := ""
		if seat.NextIsPaid {
			spec, _ := billing.Lookup(sub.Plan)
			note = fmt.Sprintf("All %d included seats are in use. This invite adds an extra seat at %s/mo.", seat.Included, payment.Money(spec.ExtraSeatMonthly))
		}
		m.dialog = newInviteDialog(note)
		return m, m.dialog.inputs[0].Focus()
	case "y":
		if u, ok := m.selectedMember(members); ok {
			return m, m.copy(u.Email)
		}
	case "s", "r":
		u, ok := m.selectedMember(members)
		if !ok {
			return m, nil
		}
		var err error
		if msg.String() == "s" {
			_, err = m.opts.Roster.Suspend(u.ID)
		} else {
			_, err = m.opts.Roster.Reactivate(m.opts.Account.Snapshot(), u.ID)
		}
		if err != nil {
			m.flash(memberError(err), true)
			return m, nil
		}
		m.syncSeats()
	case "x":
		u, ok := m.selectedMember(members)
		if !ok {
			return m, nil
		}
		if u.Role == team.Owner {
			m.flash(memberError(team.ErrOwner), true)
			return m, nil
		}
		dlg := newConfirmDialog(actRemoveMember, "Remove "+u.Name,
			fmt.Sprintf("%s loses access to Anavsan immediately.", u.Email), "Remove member")
		dlg.memberID = u.ID
		m.dialog = dlg
	}
	return m, nil
}

func (m Model) selectedMember(members []team.User) (team.User, bool) {
	if m.team.cursor < len(members) {
		return members[m.team.cursor], true
	}
	return team.User{}, false
}

func memberError(err error) string {
	switch {
	case errors.Is(err, team.ErrOwner):
		return "The account owner cannot be changed."
	case errors.Is(err, team.ErrInvitesDisabled):
		return "No seat is free on this plan. Upgrade to Team to reactivate members."
	case errors.Is(err, team.ErrInvalidTransition):
		return "That action does not apply to this member's status."
	default:
		return err.Error()
	}
}

func (m Model) teamView(width int) string {
	sub := m.opts.Account.Snapshot()
	members := m.opts.Roster.List()
	usage := m.opts.Roster.Consumption()
	seat := billing.SeatPolicy(sub, m.opts.Roster.SeatsUsed())

	var b strings.Builder
	b.WriteString(tui.Subtitle.Render("Team consumption") + "\n\n")
	b.WriteString(renderRow("Seats", seatSummary(seat)))
	b.WriteString(renderRow("Tokens", humanize.Comma(usage.Tokens)))
	b.WriteString(renderRow("Credits", fmt.Sprintf("%.1f", usage.Credits)))
	b.WriteString("\n")

	barW := max(min(width-80, 24), 6)
	for i, u := range members {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.team.cursor {
			cursor = tui.Selected.Render("> ")
			style = style.Bold(true)
		}
		share := usage.Shares[u.ID]
		filled := int(share * float64(barW))
		bar := lipgloss.NewStyle().Foreground(tui.ColorPrimary).Render(strings.Repeat("█", filled)) +
			tui.Dimmed.Render(strings.Repeat("░", barW-filled))
		b.WriteString(cursor + style.Render(fmt.Sprintf("%-18s %-26s %-7s ",
			tui.Truncate(u.Name, 18), tui.Truncate(u.Email, 26), u.Role)) +
			tui.StatusBadge(string(u.Status)) + "  " + bar + fmt.Sprintf(" %3.0f%%", share*100) + "\n")
	}

	hint := "  j/k select • y copy email • s suspend • r reactivate • x remove"
	if seat.CanInvite {
		hint = "  i invite •" + hint[1:]
	}
	b.WriteString("\n" + tui.Help.Render(hint))
	return b.String()
}

package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/tui"
)

func headerView(sub billing.Subscription, unread int, page Page, width int) string {
	left := tui.Title.UnsetMarginBottom().Render("Anavsan") + tui.Dimmed.Render("  Snowflake spend")

	plan := planName(sub.Plan)
	if sub.Plan != billing.Trial && sub.Plan != billing.Enterprise {
		plan += " · " + string(sub.BillingCycle())
	}
	right := tui.Badge.Background(tui.ColorPrimary).Render(plan) + " " + tui.StatusBadge(string(sub.Status))
	if unread > 0 {
		right += " " + tui.WarningStyle.Render(fmt.Sprintf("🔔 %d", unread))
	}

	info := "  " + page.String()
	if sub.HasPending() {
		info += tui.WarningStyle.Render(fmt.Sprintf("   %s starts %s",
			planName(sub.PendingPlan), sub.PendingEffective.Format("Jan 2, 2006")))
	}

	headerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tui.ColorPrimary).
		Width(max(width-2, 10)).
		Padding(0, 1)

	firstRow := lipgloss.JoinHorizontal(lipgloss.Top,
		left,
		lipgloss.NewStyle().Width(max(width-lipgloss.Width(left)-lipgloss.Width(right)-6, 1)).Render(""),
		right,
	)
	return headerStyle.Render(firstRow + "\n" + tui.Description.Render(info))
}

func planName(p billing.Plan) string {
	if spec, err := billing.Lookup(p); err == nil {
		return spec.Name
	}
	return string(p)
}

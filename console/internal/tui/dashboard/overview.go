package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/tui"
)

func overviewView(data *catalog.Dataset, width int) string {
	o := data.Summarize()

	cardW := max((width-8)/4, 16)
	card := func(label, value, note string) string {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(tui.ColorMuted).
			Padding(0, 1).
			Width(cardW).
			Render(tui.Description.Render(label) + "\n" +
				lipgloss.NewStyle().Bold(true).Foreground(tui.ColorText).Render(value) + "\n" +
				tui.Dimmed.Render(note))
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Spend this month", payment.Money(o.Spend), fmt.Sprintf("%.0f credits", o.Credits)),
		card("Warehouses", fmt.Sprintf("%d running", o.RunningWarehouse), fmt.Sprintf("of %d, %d accounts", len(data.Warehouses), o.Accounts)),
		card("Queries", humanize.Comma(int64(o.Queries)), fmt.Sprintf("%d failed", o.FailedQueries)),
		card("Potential savings", payment.Money(o.PotentialSavings), humanize.IBytes(uint64(o.StorageBytes))+" stored"),
	)

	var b strings.Builder
	b.WriteString(tui.Subtitle.Render("Overview") + "\n")
	b.WriteString(cards + "\n\n")
	b.WriteString(tui.Subtitle.Render("Top warehouses by cost") + "\n")
	b.WriteString(topWarehouses(data, width) + "\n")
	b.WriteString(tui.Subtitle.Render("Accounts") + "\n")
	for _, a := range data.Accounts {
		b.WriteString(fmt.Sprintf("  %-22s %s  %s/%s  %s\n",
			a.Name, tui.Dimmed.Render(a.Edition), a.Cloud, a.Region, payment.Money(a.Spend)))
	}
	return b.String()
}

// topWarehouses draws a bar per warehouse scaled to the most expensive one.
func topWarehouses(data *catalog.Dataset, width int) string {
	whs := slices.Clone(data.Warehouses)
	slices.SortStableFunc(whs, func(a, b catalog.Warehouse) int { return b.Cost.Cmp(a.Cost) })
	whs = whs[:min(5, len(whs))]
	if len(whs) == 0 {
		return tui.Dimmed.Render("  No warehouses")
	}

	barW := max(width-40, 10)
	top := whs[0].Cost
	bar := lipgloss.NewStyle().Foreground(tui.ColorPrimary)
	var b strings.Builder
	for _, w := range whs {
		n := 0
		if top.IsPositive() {
			n = int(w.Cost.Div(top).Mul(decimal.NewFromInt(int64(barW))).IntPart())
		}
		b.WriteString(fmt.Sprintf("  %-16s %s %s\n",
			tui.Truncate(w.Name, 16), bar.Render(strings.Repeat("█", max(n, 1))), payment.Money(w.Cost)))
	}
	return b.String()
}

package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/diffview"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/tui"
)

// diffModel shows the original and optimized SQL of one recommendation.
type diffModel struct {
	recs     []catalog.Recommendation // only those with SQL
	index    int
	viewport viewport.Model
	width    int
}

func newDiff(data *catalog.Dataset) diffModel {
	var recs []catalog.Recommendation
	for _, r := range data.Recommendations {
		if r.HasDiff() {
			recs = append(recs, r)
		}
	}
	d := diffModel{recs: recs, viewport: viewport.New(80, 12), width: 80}
	d.render()
	return d
}

func (d diffModel) current() (catalog.Recommendation, bool) {
	if d.index < len(d.recs) {
		return d.recs[d.index], true
	}
	return catalog.Recommendation{}, false
}

// show selects the recommendation with id; it reports false when it has no
// SQL to compare.
func (d *diffModel) show(id string) bool {
	i := slices.IndexFunc(d.recs, func(r catalog.Recommendation) bool { return r.ID == id })
	if i < 0 {
		return false
	}
	d.index = i
	d.render()
	d.viewport.GotoTop()
	return true
}

func (d *diffModel) SetSize(width, height int) {
	d.width = width
	d.viewport.Width = width
	d.viewport.Height = max(height, 4)
	d.render()
}

func (d *diffModel) render() {
	r, ok := d.current()
	if !ok {
		d.viewport.SetContent("")
		return
	}
	d.viewport.SetContent(diffview.Render(r.OriginalSQL, r.OptimizedSQL, d.width))
}

func (d diffModel) Update(msg tea.Msg) (diffModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "]", "n":
			if len(d.recs) > 0 {
				d.index = (d.index + 1) % len(d.recs)
				d.render()
				d.viewport.GotoTop()
			}
			return d, nil
		case "[", "p":
			if len(d.recs) > 0 {
				d.index = (d.index - 1 + len(d.recs)) % len(d.recs)
				d.render()
				d.viewport.GotoTop()
			}
			return d, nil
		}
	}
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

func (d diffModel) View() string {
	var b strings.Builder
	b.WriteString(tui.Subtitle.Render("Query diff") + "\n")
	r, ok := d.current()
	if !ok {
		b.WriteString(tui.Dimmed.Render("  No recommendations with SQL to compare"))
		return b.String()
	}

	stats := diffview.StatsOf(diffview.Compute(r.OriginalSQL, r.OptimizedSQL))
	st := r.Category.Style()
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		tui.Selected.Render(r.Title),
		tui.Description.Render(st.Icon+" "+st.Label),
		tui.Success.Render("saves "+payment.Money(r.Savings)+"/mo")))
	meta := fmt.Sprintf("%d of %d · %s", d.index+1, len(d.recs), r.Warehouse)
	if r.QueryID != "" {
		meta += " · " + r.QueryID
	}
	if !stats.Changed() {
		meta += " · no changes"
	}
	b.WriteString(tui.Dimmed.Render(meta) + "\n\n")
	b.WriteString(d.viewport.View() + "\n")
	b.WriteString("\n" + tui.Help.Render("  [/] previous/next • j/k scroll • y copy optimized SQL"))
	return b.String()
}

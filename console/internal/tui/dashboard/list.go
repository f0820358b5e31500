package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anavsan/anavsan/console/internal/tui"
	"github.com/anavsan/anavsan/pkg/listview"
)

// listPage is a searchable, sortable, paged table over T.
//
// Keys: / search, s next sort column, S flip direction, f cycle the facet
// filter, x clear filters, 1-9 show or hide a column, ←/→ or [/] page.
type listPage[T any] struct {
	title  string
	schema listview.Schema[T]
	items  func() []T
	cells  func(T) []string // one per schema column

	state  listview.State
	page   listview.Page[T]
	cursor int

	search    textinput.Model
	searching bool

	facet     string // facet cycled with f
	facetIdx  int    // 0 = all
	statusMsg string
}

func newListPage[T any](title string, schema listview.Schema[T], items func() []T, cells func(T) []string, pageSize int, facet string) *listPage[T] {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	l := &listPage[T]{
		title:  title,
		schema: schema,
		items:  items,
		cells:  cells,
		state:  listview.NewState(pageSize),
		search: ti,
		facet:  facet,
	}
	l.refresh()
	return l
}

// refresh reruns the pipeline and keeps the cursor on the page.
func (l *listPage[T]) refresh() {
	l.page = listview.Apply(l.items(), l.schema, &l.state)
	l.cursor = min(max(l.cursor, 0), max(len(l.page.Visible)-1, 0))
}

// Selected returns the row under the cursor.
func (l *listPage[T]) Selected() (T, bool) {
	if l.cursor < len(l.page.Visible) {
		return l.page.Visible[l.cursor], true
	}
	var zero T
	return zero, false
}

// Capturing reports whether the page wants raw keystrokes.
func (l *listPage[T]) Capturing() bool { return l.searching }

func (l *listPage[T]) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		if l.searching {
			var cmd tea.Cmd
			l.search, cmd = l.search.Update(msg)
			return cmd
		}
		return nil
	}
	if l.searching {
		switch km.String() {
		case "enter", "esc":
			l.searching = false
			l.search.Blur()
			if km.String() == "esc" {
				l.search.SetValue("")
				l.state.SetSearch("")
				l.refresh()
			}
			return nil
		}
		var cmd tea.Cmd
		l.search, cmd = l.search.Update(km)
		l.state.SetSearch(l.search.Value())
		l.refresh()
		return cmd
	}

	switch km.String() {
	case "/":
		l.searching = true
		return l.search.Focus()
	case "j", "down":
		if l.cursor < len(l.page.Visible)-1 {
			l.cursor++
		}
	case "k", "up":
		if l.cursor > 0 {
			l.cursor--
		}
	case "g":
		l.cursor = 0
	case "G":
		l.cursor = max(len(l.page.Visible)-1, 0)
	case "right", "]":
		l.state.NextPage()
		l.cursor = 0
		l.refresh()
	case "left", "[":
		l.state.PrevPage()
		l.cursor = 0
		l.refresh()
	case "s":
		l.state.ToggleSort(l.nextSortKey())
		l.refresh()
	case "S":
		if l.state.Sort.Key != "" {
			l.state.ToggleSort(l.state.Sort.Key)
			l.refresh()
		}
	case "f":
		l.cycleFacet()
	case "x":
		l.state.ClearFilters()
		l.search.SetValue("")
		l.facetIdx = 0
		l.refresh()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(km.Runes[0] - '1')
		if i < len(l.schema.Columns) {
			l.state.ToggleColumn(l.schema.Columns[i].Key)
		}
	}
	return nil
}

func (l *listPage[T]) nextSortKey() string {
	var keys []string
	for _, c := range l.schema.Columns {
		if c.Compare != nil && !l.state.Hidden[c.Key] {
			keys = append(keys, c.Key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	i := slices.Index(keys, l.state.Sort.Key)
	return keys[(i+1)%len(keys)]
}

// facetValues lists the distinct values of the cycled facet in data order.
func (l *listPage[T]) facetValues() []string {
	get, ok := l.schema.Facets[l.facet]
	if !ok {
		return nil
	}
	var vals []string
	for _, it := range l.items() {
		if v := get(it); v != "" && !slices.Contains(vals, v) {
			vals = append(vals, v)
		}
	}
	return vals
}

func (l *listPage[T]) cycleFacet() {
	vals := l.facetValues()
	if len(vals) == 0 {
		return
	}
	l.facetIdx = (l.facetIdx + 1) % (len(vals) + 1)
	if l.facetIdx == 0 {
		l.state.SetFilter(l.facet)
	} else {
		l.state.SetFilter(l.facet, vals[l.facetIdx-1])
	}
	l.refresh()
}

func (l *listPage[T]) visibleColumns() []int {
	var idx []int
	for i, c := range l.schema.Columns {
		if !l.state.Hidden[c.Key] {
			idx = append(idx, i)
		}
	}
	return idx
}

func (l *listPage[T]) View(width int) string {
	var b strings.Builder
	b.WriteString(tui.Subtitle.Render(l.title) + "\n")

	if l.searching || l.state.Search != "" {
		b.WriteString(l.search.View() + "\n")
	}
	if f := l.state.Filters[l.facet]; len(f) > 0 {
		b.WriteString(tui.Description.Render(fmt.Sprintf("%s: %s", l.facet, strings.Join(f, ", "))) + "\n")
	}

	cols := l.visibleColumns()
	rows := make([][]string, 0, len(l.page.Visible))
	for _, it := range l.page.Visible {
		all := l.cells(it)
		row := make([]string, len(cols))
		for j, ci := range cols {
			if ci < len(all) {
				row[j] = all[ci]
			}
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(cols))
	for j, ci := range cols {
		widths[j] = lipgloss.Width(l.header(ci))
		for _, r := range rows {
			widths[j] = max(widths[j], lipgloss.Width(r[j]))
		}
		widths[j] = min(widths[j], 48)
	}
	// Shrink the widest columns until the table fits.
	for sum(widths)+2*len(widths)+2 > width && width > 0 {
		i := slices.Index(widths, slices.Max(widths))
		if widths[i] <= 8 {
			break
		}
		widths[i]--
	}

	headerStyle := lipgloss.NewStyle().Foreground(tui.ColorSubtle).Bold(true)
	var hdr []string
	for j, ci := range cols {
		hdr = append(hdr, headerStyle.Render(cell(l.header(ci), widths[j])))
	}
	b.WriteString("  " + strings.Join(hdr, "  ") + "\n")

	if len(rows) == 0 {
		b.WriteString(tui.Dimmed.Render("  No matching rows") + "\n")
	}
	for i, r := range rows {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == l.cursor {
			cursor = tui.Selected.Render("> ")
			style = style.Bold(true)
		}
		parts := make([]string, len(r))
		for j := range r {
			parts[j] = style.Render(cell(r[j], widths[j]))
		}
		b.WriteString(cursor + strings.Join(parts, "  ") + "\n")
	}

	footer := fmt.Sprintf("  Page %d of %d · %d rows", l.page.Page, max(l.page.TotalPages, 1), l.page.Total)
	if l.state.Sort.Key != "" {
		footer += fmt.Sprintf(" · sorted by %s %s", l.state.Sort.Key, l.state.Sort.Direction)
	}
	b.WriteString("\n" + tui.Help.Render(footer))
	if l.statusMsg != "" {
		b.WriteString("\n" + tui.Success.Render("  "+l.statusMsg))
	}
	return b.String()
}

func (l *listPage[T]) header(ci int) string {
	c := l.schema.Columns[ci]
	if c.Key != l.state.Sort.Key {
		return c.Title
	}
	if l.state.Sort.Direction == listview.Descending {
		return c.Title + " ↓"
	}
	return c.Title + " ↑"
}

func cell(s string, w int) string {
	s = tui.Truncate(s, w)
	return s + strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

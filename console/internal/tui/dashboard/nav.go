package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anavsan/anavsan/console/internal/prefs"
	"github.com/anavsan/anavsan/console/internal/tui"
)

// Page identifies a dashboard page.
type Page int

const (
	PageOverview Page = iota
	PageWarehouses
	PageStorage
	PageQueries
	PageRecommendations
	PageDiff
	PageNotifications
	PagePlan
	PageChangePlan
	PageTeam
)

var pageSlugs = [...]string{
	PageOverview:        "overview",
	PageWarehouses:      "warehouses",
	PageStorage:         "storage",
	PageQueries:         "queries",
	PageRecommendations: "recommendations",
	PageDiff:            "diff",
	PageNotifications:   "notifications",
	PagePlan:            "plan",
	PageChangePlan:      "change-plan",
	PageTeam:            "team",
}

func (p Page) String() string {
	if int(p) < len(pageSlugs) {
		return pageSlugs[p]
	}
	return "unknown"
}

// ParsePage maps a slug back to its page.
func ParsePage(s string) (Page, bool) {
	for i, slug := range pageSlugs {
		if slug == strings.ToLower(s) {
			return Page(i), true
		}
	}
	return 0, false
}

// navItem is a sidebar entry. Items with children are submenus and are
// identified by name.
type navItem struct {
	label    string
	name     string
	page     Page
	children []navItem
}

var navTree = []navItem{
	{label: "Overview", page: PageOverview},
	{label: "Warehouses", page: PageWarehouses},
	{label: "Storage", page: PageStorage},
	{label: "Queries", name: "queries", children: []navItem{
		{label: "All queries", page: PageQueries},
		{label: "Recommendations", page: PageRecommendations},
		{label: "Query diff", page: PageDiff},
	}},
	{label: "Billing", name: "billing", children: []navItem{
		{label: "Your plan", page: PagePlan},
		{label: "Change plan", page: PageChangePlan},
		{label: "Team consumption", page: PageTeam},
	}},
	{label: "Notifications", page: PageNotifications},
}

// submenuOf returns the name of the submenu holding p, or "".
func submenuOf(p Page) string {
	for _, it := range navTree {
		for _, c := range it.children {
			if c.page == p {
				return it.name
			}
		}
	}
	return ""
}

func isSubmenu(name string) bool {
	for _, it := range navTree {
		if it.name != "" && it.name == name {
			return true
		}
	}
	return false
}

type navEntry struct {
	item  navItem
	child bool
}

// sidebar tracks the open submenu and persists it so the next launch opens
// the same one.
type sidebar struct {
	open   string
	cursor int
	store  prefs.Store
	logger *slog.Logger
}

// newSidebar restores the open submenu from the store, falling back to the
// submenu of the active page.
func newSidebar(store prefs.Store, active Page, logger *slog.Logger) sidebar {
	s := sidebar{store: store, logger: logger}
	if store != nil {
		name, err := store.Get(context.Background(), prefs.LastOpenSubmenu)
		switch {
		case err == nil && isSubmenu(name):
			s.open = name
		case err != nil && !errors.Is(err, prefs.ErrNotFound):
			logger.Warn("read sidebar preference", "error", err)
		}
	}
	if s.open == "" {
		s.open = submenuOf(active)
	}
	s.focus(active)
	return s
}

func (s sidebar) entries() []navEntry {
	var out []navEntry
	for _, it := range navTree {
		out = append(out, navEntry{item: it})
		if it.name != "" && it.name == s.open {
			for _, c := range it.children {
				out = append(out, navEntry{item: c, child: true})
			}
		}
	}
	return out
}

func (s *sidebar) move(delta int) {
	n := len(s.entries())
	s.cursor = min(max(s.cursor+delta, 0), n-1)
}

// toggle opens the named submenu, or closes it when it is already open. The
// open name is written to the store; closing removes it.
func (s *sidebar) toggle(name string) {
	if s.open == name {
		s.open = ""
		s.persist("")
	} else {
		s.open = name
		s.persist(name)
	}
	for i, e := range s.entries() {
		if e.item.name == name {
			s.cursor = i
		}
	}
}

// reveal opens the submenu holding p, if it is not open already, and puts
// the cursor on p.
func (s *sidebar) reveal(p Page) {
	if sub := submenuOf(p); sub != "" && sub != s.open {
		s.open = sub
		s.persist(sub)
	}
	s.focus(p)
}

func (s *sidebar) focus(p Page) {
	for i, e := range s.entries() {
		if e.item.name == "" && e.item.page == p {
			s.cursor = i
			return
		}
	}
}

func (s *sidebar) persist(name string) {
	if s.store == nil {
		return
	}
	ctx := context.Background()
	var err error
	if name == "" {
		err = s.store.Delete(ctx, prefs.LastOpenSubmenu)
	} else {
		err = s.store.Set(ctx, prefs.LastOpenSubmenu, name)
	}
	if err != nil {
		s.logger.Warn("save sidebar preference", "error", err)
	}
}

func (s sidebar) View(active Page, focused bool, height int) string {
	var b strings.Builder
	for i, e := range s.entries() {
		label := e.item.label
		switch {
		case e.item.name != "" && e.item.name == s.open:
			label = "▾ " + label
		case e.item.name != "":
			label = "▸ " + label
		case e.child:
			label = "    " + label
		default:
			label = "  " + label
		}

		style := lipgloss.NewStyle().Foreground(tui.ColorText)
		if e.item.name == "" && e.item.page == active {
			style = tui.Selected
		}
		cursor := "  "
		if focused && i == s.cursor {
			cursor = tui.Selected.Render("> ")
		}
		b.WriteString(cursor + style.Render(label) + "\n")
	}

	border := tui.ColorMuted
	if focused {
		border = tui.ColorPrimary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(24).
		Height(max(height-2, 1)).
		Render(strings.TrimRight(b.String(), "\n"))
}

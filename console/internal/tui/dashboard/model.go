// Package dashboard is the full-screen console: a sidebar of pages, list
// views over the dataset, the billing pages and the checkout modal.
package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/eventbus"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/prefs"
	"github.com/anavsan/anavsan/console/internal/team"
	"github.com/anavsan/anavsan/console/internal/tui"
	"github.com/anavsan/anavsan/console/internal/tui/checkout"
)

// Focus identifies which panel receives keys.
type Focus int

const (
	FocusSidebar Focus = iota
	FocusContent
	FocusActivity
)

// Options wires the dashboard to its data and host capabilities.
type Options struct {
	Data     *catalog.Dataset
	Inbox    *catalog.Inbox
	Account  *billing.Account
	Roster   *team.Roster
	Prefs    prefs.Store
	Checkout checkout.Options

	PageSize int
	Start    Page
	// TickEvery is how often a scheduled plan change is checked. Zero
	// disables the check.
	TickEvery time.Duration

	OnNavigate func(page, sub string)
	Clipboard  func(string) error
	Now        func() time.Time
	Logger     *slog.Logger
}

type tickMsg time.Time

// Model is the root dashboard TUI model.
type Model struct {
	opts   Options
	logger *slog.Logger

	page    Page
	focus   Focus
	sidebar sidebar

	warehouses      *listPage[catalog.Warehouse]
	queries         *listPage[catalog.Query]
	storage         *listPage[catalog.StorageItem]
	recommendations *listPage[catalog.Recommendation]
	notifications   *listPage[catalog.Notification]
	diff            diffModel
	change          changePlanModel
	team            teamModel

	flow     *payment.Flow
	checkout checkout.Model
	dialog   *dialog
	activity activityModel
	help     helpModel

	status    string
	statusErr bool
	width     int
	height    int
	quitting  bool
}

// NewModel builds the dashboard on opts.Start.
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Checkout.Logger == nil {
		opts.Checkout.Logger = opts.Logger
	}
	logger := opts.Logger.With("component", "dashboard")

	flow := payment.NewFlow(opts.Account.Commit)
	m := Model{
		opts:            opts,
		logger:          logger,
		page:            opts.Start,
		focus:           FocusContent,
		sidebar:         newSidebar(opts.Prefs, opts.Start, logger),
		warehouses:      newWarehousePage(opts.Data, opts.PageSize),
		queries:         newQueryPage(opts.Data, opts.PageSize),
		storage:         newStoragePage(opts.Data, opts.PageSize),
		recommendations: newRecommendationPage(opts.Data, opts.PageSize),
		notifications:   newNotificationPage(opts.Inbox, opts.PageSize),
		diff:            newDiff(opts.Data),
		change:          changePlanModel{cycle: opts.Account.Snapshot().BillingCycle()},
		flow:            flow,
		checkout:        checkout.New(flow, opts.Checkout),
		activity:        newActivity(),
	}
	m.change.cursor = m.planIndex(opts.Account.Snapshot().Plan)
	m.syncSeats()
	m.resize(100, 30)
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	if m.opts.TickEvery <= 0 {
		return nil
	}
	return tea.Tick(m.opts.TickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		var cmd tea.Cmd
		m.checkout, cmd = m.checkout.Update(msg)
		return m, cmd

	case tickMsg:
		if m.opts.Account.Tick() {
			sub := m.opts.Account.Snapshot()
			m.flash(fmt.Sprintf("Your plan is now %s.", planName(sub.Plan)), false)
		}
		return m, m.tick()

	case EventMsg:
		m.activity.add(msg.Event)
		switch msg.Event.Type {
		case eventbus.NotificationRead:
			m.notifications.refresh()
		case eventbus.MemberChanged:
			m.team.cursor = min(m.team.cursor, max(len(m.opts.Roster.List())-1, 0))
		}
		return m, nil

	case checkout.ClosedMsg:
		switch {
		case msg.Err != nil:
			m.flash("Payment went through but the plan could not be updated: "+msg.Err.Error(), true)
		case msg.Paid:
			m.change.cycle = msg.Cycle.Normalize()
			m.navigate(PagePlan)
			m.flash(fmt.Sprintf("You're on %s, billed %s.", planName(msg.Plan), msg.Cycle.Normalize()), false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Spinner ticks, charge results and the like belong to the modal.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.checkout, cmd = m.checkout.Update(msg)
	cmds = append(cmds, cmd)
	if l := m.activeList(); l != nil && l.Capturing() {
		cmds = append(cmds, l.Update(msg))
	}
	return m, tea.Batch(cmds...)
}

var (
	keyQuit  = key.NewBinding(key.WithKeys("ctrl+c", "q"))
	keyHelp  = key.NewBinding(key.WithKeys("?"))
	keyFocus = key.NewBinding(key.WithKeys("tab"))
	keyBack  = key.NewBinding(key.WithKeys("shift+tab"))
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.checkout.IsOpen() {
		var cmd tea.Cmd
		m.checkout, cmd = m.checkout.Update(msg)
		return m, cmd
	}
	if m.dialog != nil {
		return m.updateDialog(msg)
	}
	if m.help.visible {
		switch msg.String() {
		case "?", "esc", "q":
			m.help.toggle()
		}
		return m, nil
	}
	if l := m.activeList(); m.focus == FocusContent && l != nil && l.Capturing() {
		return m, l.Update(msg)
	}

	switch {
	case key.Matches(msg, keyQuit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keyHelp):
		m.help.toggle()
		return m, nil
	case key.Matches(msg, keyFocus):
		m.cycleFocus(1)
		return m, nil
	case key.Matches(msg, keyBack):
		m.cycleFocus(-1)
		return m, nil
	case msg.String() == "a":
		m.activity.visible = !m.activity.visible
		if !m.activity.visible && m.focus == FocusActivity {
			m.focus = FocusContent
		}
		m.resize(m.width, m.height)
		return m, nil
	}

	switch m.focus {
	case FocusSidebar:
		return m.updateSidebar(msg)
	case FocusActivity:
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(msg)
		return m, cmd
	default:
		m.status = ""
		return m.updateContent(msg)
	}
}

func (m *Model) cycleFocus(delta int) {
	n := 2
	if m.activity.visible {
		n = 3
	}
	m.focus = Focus((int(m.focus) + delta + n) % n)
}

func (m Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.sidebar.move(1)
	case "k", "up":
		m.sidebar.move(-1)
	case "enter", "right", "l":
		e := m.sidebar.entries()[m.sidebar.cursor]
		if e.item.name != "" {
			m.sidebar.toggle(e.item.name)
			return m, nil
		}
		m.navigate(e.item.page)
		m.focus = FocusContent
	case "left", "h":
		if m.sidebar.open != "" {
			m.sidebar.toggle(m.sidebar.open)
		}
	}
	return m, nil
}

func (m Model) updateContent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.page {
	case PageWarehouses:
		return m, m.warehouses.Update(msg)
	case PageStorage:
		return m, m.storage.Update(msg)

	case PageQueries:
		q, ok := m.queries.Selected()
		switch msg.String() {
		case "y":
			if ok {
				return m, m.copy(q.ID)
			}
		case "d", "enter":
			if ok {
				m.openDiffForQuery(q.ID)
			}
			return m, nil
		}
		return m, m.queries.Update(msg)

	case PageRecommendations:
		switch msg.String() {
		case "d", "enter":
			if r, ok := m.recommendations.Selected(); ok {
				m.openDiff(r)
			}
			return m, nil
		}
		return m, m.recommendations.Update(msg)

	case PageDiff:
		if msg.String() == "y" {
			if r, ok := m.diff.current(); ok {
				return m, m.copy(r.OptimizedSQL)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.diff, cmd = m.diff.Update(msg)
		return m, cmd

	case PageNotifications:
		switch msg.String() {
		case "enter":
			if n, ok := m.notifications.Selected(); ok {
				if err := m.opts.Inbox.MarkRead(n.ID); err != nil {
					m.flash(err.Error(), true)
				}
				m.notifications.refresh()
			}
			return m, nil
		case "R":
			if n := m.opts.Inbox.MarkAllRead(); n > 0 {
				m.flash(fmt.Sprintf("Marked %d notifications read.", n), false)
			}
			m.notifications.refresh()
			return m, nil
		}
		return m, m.notifications.Update(msg)

	case PagePlan:
		return m.updatePlan(msg)
	case PageChangePlan:
		return m.updateChangePlan(msg)
	case PageTeam:
		return m.updateTeam(msg)
	}
	return m, nil
}

func (m *Model) openDiff(r catalog.Recommendation) {
	if !m.diff.show(r.ID) {
		m.flash("This recommendation has no SQL to compare.", false)
		return
	}
	m.navigate(PageDiff)
}

func (m *Model) openDiffForQuery(id string) {
	for _, r := range m.opts.Data.Recommendations {
		if r.QueryID == id && r.HasDiff() {
			m.openDiff(r)
			return
		}
	}
	m.flash("No rewrite suggested for "+id+".", false)
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	out, cmd := m.dialog.Update(msg)
	switch out {
	case dismissed:
		m.dialog = nil
	case accepted:
		if err := m.runDialog(m.dialog); err != nil {
			m.dialog.err = err.Error()
			return m, nil
		}
		m.dialog = nil
	}
	return m, cmd
}

// runDialog performs the action of an accepted dialog.
func (m *Model) runDialog(d *dialog) error {
	switch d.action {
	case actDowngrade:
		if err := m.opts.Account.ConfirmDowngrade(d.plan); err != nil {
			return err
		}
		sub := m.opts.Account.Snapshot()
		m.navigate(PagePlan)
		m.flash(fmt.Sprintf("Downgrade to %s scheduled for %s.", planName(d.plan), sub.PendingEffective.Format("January 2, 2006")), false)

	case actCycleSwitch:
		if err := m.opts.Account.SwitchCycle(d.cycle); err != nil {
			return err
		}
		m.change.cycle = d.cycle
		m.flash("Billing cycle switched to "+string(d.cycle)+".", false)

	case actRemoveMember:
		if err := m.opts.Roster.Remove(d.memberID); err != nil {
			return errors.New(memberError(err))
		}
		m.syncSeats()
		m.team.cursor = min(m.team.cursor, max(len(m.opts.Roster.List())-1, 0))
		m.flash("Member removed.", false)

	case actInvite:
		u, err := m.opts.Roster.Invite(m.opts.Account.Snapshot(), d.name(), d.email(), d.selectedRole())
		if err != nil {
			return err
		}
		m.syncSeats()
		m.flash("Invite sent to "+u.Email+".", false)
	}
	return nil
}

func (m *Model) navigate(p Page) {
	m.page = p
	m.sidebar.reveal(p)
	m.status = ""
	switch p {
	case PageNotifications:
		m.notifications.refresh()
	case PageChangePlan:
		m.change.cursor = m.planIndex(m.opts.Account.Snapshot().Plan)
	}
	m.logger.Debug("navigate", "page", p.String())
	if m.opts.OnNavigate != nil {
		m.opts.OnNavigate(p.String(), submenuOf(p))
	}
}

func (m Model) planIndex(p billing.Plan) int {
	for i, spec := range billing.Catalog {
		if spec.Plan == p {
			return i
		}
	}
	return 0
}

// copy writes text to the clipboard without waiting for it; failures are
// only logged.
func (m *Model) copy(text string) tea.Cmd {
	m.flash("Copied to clipboard.", false)
	write, logger := m.opts.Clipboard, m.logger
	return func() tea.Msg {
		if err := write(text); err != nil {
			logger.Debug("clipboard write failed", "error", err)
		}
		return nil
	}
}

func (m *Model) flash(msg string, isErr bool) {
	m.status, m.statusErr = msg, isErr
}

func (m *Model) syncSeats() {
	m.opts.Account.SetSeats(m.opts.Roster.SeatsUsed())
}

func (m Model) now() time.Time { return m.opts.Now() }

func (m Model) activeList() interface {
	Capturing() bool
	Update(tea.Msg) tea.Cmd
} {
	switch m.page {
	case PageWarehouses:
		return m.warehouses
	case PageQueries:
		return m.queries
	case PageStorage:
		return m.storage
	case PageRecommendations:
		return m.recommendations
	case PageNotifications:
		return m.notifications
	}
	return nil
}

const (
	headerHeight   = 4
	helpHeight     = 1
	activityHeight = 8
	sidebarWidth   = 26
)

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.diff.SetSize(m.contentWidth()-4, m.bodyHeight()-8)
	m.activity.SetSize(max(width-4, 10), activityHeight-3)
}

func (m Model) contentWidth() int { return max(m.width-sidebarWidth-4, 20) }

func (m Model) bodyHeight() int {
	h := m.height - headerHeight - helpHeight
	if m.activity.visible {
		h -= activityHeight
	}
	return max(h, 8)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.help.visible {
		return m.help.View()
	}
	if m.checkout.FullScreen() {
		return m.checkout.View()
	}

	sub := m.opts.Account.Snapshot()
	header := headerView(sub, m.opts.Inbox.Unread(), m.page, m.width)
	bodyH := m.bodyHeight()

	var body string
	switch {
	case m.checkout.IsOpen():
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.checkout.View())
	case m.dialog != nil:
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.dialog.View())
	default:
		content := m.contentView(m.contentWidth() - 2)
		if m.status != "" {
			style := tui.Success
			if m.statusErr {
				style = tui.ErrorStyle
			}
			content += "\n\n" + style.Render(m.status)
		}
		border := tui.ColorMuted
		if m.focus == FocusContent {
			border = tui.ColorPrimary
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Width(m.contentWidth()).
			Height(bodyH - 2).
			Render(content)
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.page, m.focus == FocusSidebar, bodyH), box)
	}

	parts := []string{header, body}
	if m.activity.visible {
		border := tui.ColorMuted
		if m.focus == FocusActivity {
			border = tui.ColorPrimary
		}
		parts = append(parts, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Width(max(m.width-2, 10)).
			Render(tui.Subtitle.Render(" Activity")+"\n"+m.activity.View()))
	}
	parts = append(parts, m.help.bar(m.focus))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) contentView(width int) string {
	switch m.page {
	case PageOverview:
		return overviewView(m.opts.Data, width)
	case PageWarehouses:
		return m.warehouses.View(width)
	case PageStorage:
		return m.storage.View(width)
	case PageQueries:
		return m.queries.View(width) + "\n" + tui.Help.Render("  y copy id • d compare rewrite")
	case PageRecommendations:
		return m.recommendations.View(width) + "\n" + tui.Help.Render("  enter compare SQL")
	case PageDiff:
		return m.diff.View()
	case PageNotifications:
		return m.notifications.View(width) + "\n" + tui.Help.Render("  enter mark read • R mark all read")
	case PagePlan:
		return m.planView(width)
	case PageChangePlan:
		return m.changePlanView(width)
	case PageTeam:
		return m.teamView(width)
	}
	return ""
}

// Page returns the page on screen.
func (m Model) Page() Page { return m.page }

// Quitting returns true if the user quit.
func (m Model) Quitting() bool { return m.quitting }

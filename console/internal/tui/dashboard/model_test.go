package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/eventbus"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/prefs"
	"github.com/anavsan/anavsan/console/internal/team"
	"github.com/anavsan/anavsan/console/internal/tui/checkout"
	"github.com/anavsan/anavsan/pkg/listview"
)

type harness struct {
	data      *catalog.Dataset
	inbox     *catalog.Inbox
	account   *billing.Account
	roster    *team.Roster
	store     prefs.Store
	now       time.Time
	copied    []string
	navigated []string
}

func teamMonthly() billing.Subscription {
	return billing.Subscription{
		Plan:             billing.Team,
		Status:           billing.Active,
		Cycle:            billing.Monthly,
		Seats:            4,
		CurrentPeriodEnd: catalog.Epoch.AddDate(0, 0, 20),
	}
}

func newHarness(t *testing.T, sub billing.Subscription) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{data: catalog.Load(), store: prefs.NewMemory(), now: catalog.Epoch}
	acct, err := billing.NewAccount(sub, logger, billing.WithClock(func() time.Time { return h.now }))
	require.NoError(t, err)
	h.account = acct
	h.inbox = catalog.NewInbox(h.data.Notifications, nil)
	h.roster = team.NewRoster(team.FitSeats(sub, h.data.Members), nil, logger)
	return h
}

func (h *harness) model(start Page) Model {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewModel(Options{
		Data:    h.data,
		Inbox:   h.inbox,
		Account: h.account,
		Roster:  h.roster,
		Prefs:   h.store,
		Checkout: checkout.Options{
			Gateway: &payment.SimulatedGateway{Clock: func() time.Time { return h.now }},
		},
		PageSize: 10,
		Start:    start,
		OnNavigate: func(page, sub string) {
			h.navigated = append(h.navigated, page+"/"+sub)
		},
		Clipboard: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
		Now:    func() time.Time { return h.now },
		Logger: logger,
	})
	m, _ = update(m, tea.WindowSizeMsg{Width: 200, Height: 60})
	return m
}

func keyOf(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// press sends keys without running the commands they return.
func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = update(m, keyOf(k))
	}
	return m
}

// run sends a key and then executes the returned commands, feeding their
// messages back in. Spinner ticks are dropped so no timers run.
func run(m Model, k string) Model {
	next, cmd := update(m, keyOf(k))
	m = next
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			var cmd tea.Cmd
			m, cmd = update(m, msg)
			queue = append(queue, cmd)
		}
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestSidebarSubmenuIsReadBackOnMount(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageOverview)
	assert.Empty(t, m.sidebar.open)

	// Content has focus first; tab moves to the sidebar. Billing is the
	// fifth entry while every submenu is closed.
	m = press(m, "tab", "j", "j", "j", "j", "enter")
	assert.Equal(t, "billing", m.sidebar.open)

	got, err := h.store.Get(context.Background(), prefs.LastOpenSubmenu)
	require.NoError(t, err)
	assert.Equal(t, "billing", got)

	remounted := h.model(PageOverview)
	assert.Equal(t, "billing", remounted.sidebar.open)

	// Closing the submenu removes the preference.
	m = press(m, "enter")
	assert.Empty(t, m.sidebar.open)
	_, err = h.store.Get(context.Background(), prefs.LastOpenSubmenu)
	assert.ErrorIs(t, err, prefs.ErrNotFound)
}

func TestSidebarFallsBackToActivePage(t *testing.T) {
	h := newHarness(t, teamMonthly())
	require.NoError(t, h.store.Set(context.Background(), prefs.LastOpenSubmenu, "no-such-menu"))

	m := h.model(PageTeam)
	assert.Equal(t, "billing", m.sidebar.open)

	m = h.model(PageDiff)
	assert.Equal(t, "queries", m.sidebar.open)
}

func TestSidebarNavigatesAndReportsPage(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageOverview)

	// Open Billing, then pick its first child "Your plan".
	m = press(m, "tab", "j", "j", "j", "j", "enter", "j", "enter")
	assert.Equal(t, PagePlan, m.Page())
	assert.Equal(t, FocusContent, m.focus)
	assert.Equal(t, []string{"plan/billing"}, h.navigated)
	assert.Contains(t, m.View(), "Your plan")
}

func TestDowngradeIsConfirmedAndScheduled(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageChangePlan)
	require.Equal(t, billing.Team, billing.Catalog[m.change.cursor].Plan)

	m = press(m, "left", "enter")
	require.NotNil(t, m.dialog)
	assert.Equal(t, actDowngrade, m.dialog.action)
	assert.Contains(t, m.View(), "Downgrade to Individual")
	assert.Contains(t, m.View(), "June 21, 2025")

	// Nothing changes until the dialog is confirmed.
	assert.False(t, h.account.Snapshot().HasPending())

	m = press(m, "y")
	assert.Nil(t, m.dialog)
	sub := h.account.Snapshot()
	assert.Equal(t, billing.Team, sub.Plan)
	assert.Equal(t, billing.Individual, sub.PendingPlan)
	assert.True(t, sub.DowngradePending)
	assert.Equal(t, PagePlan, m.Page())
	assert.Contains(t, m.status, "scheduled")
	assert.Contains(t, m.View(), "Press c to keep Team")

	// A second downgrade is disabled while one is pending.
	m = press(m, "u", "left", "enter")
	assert.Nil(t, m.dialog)
	assert.Contains(t, m.status, "already scheduled")

	m.page = PagePlan
	m = press(m, "c")
	assert.False(t, h.account.Snapshot().HasPending())
	assert.Contains(t, m.status, "canceled")
}

func TestDowngradeDialogCanBeDismissed(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageChangePlan)

	m = press(m, "left", "enter", "esc")
	assert.Nil(t, m.dialog)
	assert.False(t, h.account.Snapshot().HasPending())
	assert.Equal(t, PageChangePlan, m.Page())
}

func TestCycleSwitchNeedsConfirmation(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageChangePlan)

	m = press(m, "t", "enter")
	require.NotNil(t, m.dialog)
	assert.Equal(t, actCycleSwitch, m.dialog.action)
	assert.Contains(t, m.View(), "$2579.04")

	m = press(m, "enter")
	assert.Nil(t, m.dialog)
	sub := h.account.Snapshot()
	assert.Equal(t, billing.Yearly, sub.BillingCycle())
	assert.Equal(t, billing.Team, sub.Plan)
}

func TestSamePlanAndCycleIsUnavailable(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageChangePlan)

	m = press(m, "enter")
	assert.Nil(t, m.dialog)
	assert.False(t, m.checkout.IsOpen())
	assert.Equal(t, "current plan", m.status)
}

func TestEnterpriseRoutesToSales(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageChangePlan)

	m = press(m, "right", "enter")
	require.NotNil(t, m.dialog)
	assert.Equal(t, dialogInfo, m.dialog.kind)
	assert.Contains(t, m.View(), "Talk to sales")

	m = press(m, "enter")
	assert.Nil(t, m.dialog)
	assert.False(t, m.checkout.IsOpen())
	assert.Equal(t, billing.Team, h.account.Snapshot().Plan)
}

func TestUpgradeGoesThroughCheckout(t *testing.T) {
	sub := teamMonthly()
	sub.Plan = billing.Individual
	sub.Seats = 1
	h := newHarness(t, sub)
	m := h.model(PageChangePlan)

	m = press(m, "right", "enter")
	require.True(t, m.checkout.IsOpen())
	assert.Contains(t, m.View(), "$258.12")

	// Other dashboard keys go to the modal.
	m = press(m, "q")
	assert.False(t, m.Quitting())

	m = run(m, "enter")
	assert.Equal(t, payment.StepSuccess, m.flow.Step())
	assert.Equal(t, billing.Individual, h.account.Snapshot().Plan, "plan changes only when the modal is done")

	m = run(m, "enter")
	assert.False(t, m.checkout.IsOpen())
	got := h.account.Snapshot()
	assert.Equal(t, billing.Team, got.Plan)
	assert.Equal(t, billing.Active, got.Status)
	assert.Equal(t, PagePlan, m.Page())
	assert.Contains(t, m.status, "You're on Team")
}

func TestCheckoutCanceledLeavesPlan(t *testing.T) {
	sub := teamMonthly()
	sub.Plan = billing.Individual
	h := newHarness(t, sub)
	m := h.model(PageChangePlan)

	m = press(m, "right", "enter")
	require.True(t, m.checkout.IsOpen())
	m = run(m, "esc")
	assert.False(t, m.checkout.IsOpen())
	assert.Equal(t, billing.Individual, h.account.Snapshot().Plan)
	assert.Equal(t, PageChangePlan, m.Page())
}

func TestNotificationsMarkRead(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageNotifications)
	require.Equal(t, 5, h.inbox.Unread())

	first, ok := m.notifications.Selected()
	require.True(t, ok)
	require.False(t, first.Read)

	m = press(m, "enter")
	assert.Equal(t, 4, h.inbox.Unread())

	m = press(m, "R")
	assert.Zero(t, h.inbox.Unread())
	assert.Contains(t, m.status, "Marked 4")
	assert.NotContains(t, m.View(), "🔔")
}

func TestRecommendationOpensDiffAndCopiesSQL(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageRecommendations)

	r, ok := m.recommendations.Selected()
	require.True(t, ok)
	require.True(t, r.HasDiff())

	m = press(m, "enter")
	assert.Equal(t, PageDiff, m.Page())
	assert.Contains(t, m.View(), r.Title)
	assert.Contains(t, m.View(), "Original")
	assert.Contains(t, m.View(), "Optimized")

	m = run(m, "y")
	assert.Equal(t, []string{r.OptimizedSQL}, h.copied)
	assert.Contains(t, m.status, "Copied")

	m = press(m, "]")
	next, _ := m.diff.current()
	assert.NotEqual(t, r.ID, next.ID)
}

func TestRecommendationWithoutSQL(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageRecommendations)

	// Sort by category: warehouse sizing comes first and has no SQL.
	m = press(m, "s", "s")
	r, ok := m.recommendations.Selected()
	require.True(t, ok)
	require.False(t, r.HasDiff(), r.ID)

	m = press(m, "enter")
	assert.Equal(t, PageRecommendations, m.Page())
	assert.Contains(t, m.status, "no SQL")
}

func TestClipboardFailureIsNotSurfaced(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageQueries)
	m.opts.Clipboard = func(string) error { return errors.New("no display") }

	m = run(m, "y")
	assert.Contains(t, m.status, "Copied")
	assert.False(t, m.statusErr)
}

func TestQuerySearchCapturesKeys(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageQueries)

	want := listview.NewState(10)
	want.SetSearch("ledger")
	expected := listview.Apply(h.data.Queries, catalog.QuerySchema(), &want)
	require.NotZero(t, expected.Total)

	m = press(m, "/")
	m = typeText(m, "ledger")
	assert.False(t, m.Quitting())
	assert.Equal(t, expected.Total, m.queries.page.Total)
	for _, q := range m.queries.page.Visible {
		assert.Contains(t, strings.ToLower(q.Text+q.User+q.Warehouse+q.ID), "ledger")
	}

	m = press(m, "esc")
	assert.Equal(t, len(h.data.Queries), m.queries.page.Total)

	m = press(m, "q")
	assert.True(t, m.Quitting())
}

func TestTeamInvite(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageTeam)

	m = press(m, "i")
	require.NotNil(t, m.dialog)
	require.Equal(t, dialogInvite, m.dialog.kind)

	m = typeText(m, "Ada Lovelace")
	m = press(m, "tab")
	m = typeText(m, "ada@example.com")
	m = press(m, "enter")
	assert.Nil(t, m.dialog)

	members := h.roster.List()
	require.Len(t, members, 6)
	added := members[5]
	assert.Equal(t, "ada@example.com", added.Email)
	assert.Equal(t, team.Invited, added.Status)
	assert.Equal(t, 5, h.account.Snapshot().Seats)
	assert.Contains(t, m.status, "Invite sent")
}

func TestTeamInviteDuplicateShowsError(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageTeam)

	m = press(m, "i", "tab")
	m = typeText(m, "jon@acme.io")
	m = press(m, "enter")
	require.NotNil(t, m.dialog)
	assert.Contains(t, m.dialog.err, "already exists")
	assert.Len(t, h.roster.List(), 5)
}

func TestIndividualPlanCannotInvite(t *testing.T) {
	sub := teamMonthly()
	sub.Plan = billing.Individual
	h := newHarness(t, sub)
	m := h.model(PageTeam)

	m = press(m, "i")
	assert.Nil(t, m.dialog)
	assert.Contains(t, m.status, "single seat")
}

func TestIndividualPlanCannotReactivate(t *testing.T) {
	sub := teamMonthly()
	sub.Plan = billing.Individual
	sub.Seats = 1
	h := newHarness(t, sub)
	require.Equal(t, 1, h.roster.SeatsUsed())
	m := h.model(PageTeam)

	m = press(m, "j", "r")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "No seat is free")
	lee, err := h.roster.Get("usr_lee")
	require.NoError(t, err)
	assert.Equal(t, team.Suspended, lee.Status)
	assert.Equal(t, 1, h.roster.SeatsUsed())
}

func TestTeamMemberActions(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageTeam)

	m = press(m, "x")
	assert.Nil(t, m.dialog)
	assert.True(t, m.statusErr)

	m = press(m, "j", "s")
	jon, err := h.roster.Get("usr_jon")
	require.NoError(t, err)
	assert.Equal(t, team.Suspended, jon.Status)
	assert.Equal(t, 3, h.account.Snapshot().Seats)

	m = press(m, "r")
	jon, _ = h.roster.Get("usr_jon")
	assert.Equal(t, team.Active, jon.Status)

	m = press(m, "x")
	require.NotNil(t, m.dialog)
	m = press(m, "y")
	assert.Nil(t, m.dialog)
	_, err = h.roster.Get("usr_jon")
	assert.ErrorIs(t, err, team.ErrNotFound)
}

func TestTickActivatesScheduledPlan(t *testing.T) {
	sub := teamMonthly()
	sub.CurrentPeriodEnd = catalog.Epoch.AddDate(0, 0, 1)
	sub.PendingPlan = billing.Individual
	sub.PendingEffective = sub.CurrentPeriodEnd
	sub.DowngradePending = true
	h := newHarness(t, sub)
	m := h.model(PagePlan)

	m, _ = update(m, tickMsg(h.now))
	assert.Equal(t, billing.Team, h.account.Snapshot().Plan)

	h.now = catalog.Epoch.AddDate(0, 0, 2)
	m, cmd := update(m, tickMsg(h.now))
	assert.Nil(t, cmd)
	assert.Equal(t, billing.Individual, h.account.Snapshot().Plan)
	assert.Contains(t, m.status, "Individual")
}

func TestEventsReachActivityPanel(t *testing.T) {
	h := newHarness(t, teamMonthly())
	m := h.model(PageOverview)

	bus := eventbus.New()
	ch := bus.Subscribe()
	logger := slog.New(eventbus.NewSlogHandler(slog.NewTextHandler(io.Discard, nil), bus, slog.LevelInfo))
	logger.Info("plan committed", "component", "billing", "plan", "team")
	evt := <-ch

	m, _ = update(m, EventMsg{Event: evt})
	m = press(m, "a")
	require.True(t, m.activity.visible)
	view := m.View()
	assert.Contains(t, view, "Activity")
	assert.Contains(t, view, "plan committed")
	assert.Contains(t, view, "[billing]")
	assert.Contains(t, view, "plan=team")
}

func TestWarehouseListKeys(t *testing.T) {
	l := newWarehousePage(catalog.Load(), 3)
	total := l.page.Total
	require.Greater(t, total, 3)

	l.Update(keyOf("s"))
	assert.Equal(t, "name", l.state.Sort.Key)
	assert.Equal(t, listview.Ascending, l.state.Sort.Direction)
	l.Update(keyOf("S"))
	assert.Equal(t, listview.Descending, l.state.Sort.Direction)

	l.Update(keyOf("right"))
	assert.Equal(t, 2, l.page.Page)

	// Filtering goes back to the first page.
	l.Update(keyOf("f"))
	assert.Equal(t, 1, l.page.Page)
	assert.Less(t, l.page.Total, total)

	l.Update(keyOf("1"))
	assert.True(t, l.state.Hidden["name"])
	assert.NotContains(t, l.View(120), "Warehouse ")

	l.Update(keyOf("x"))
	assert.Equal(t, total, l.page.Total)
}

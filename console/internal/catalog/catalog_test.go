package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anavsan/anavsan/console/internal/diffview"
	"github.com/anavsan/anavsan/console/internal/eventbus"
	"github.com/anavsan/anavsan/pkg/listview"
)

func TestCategoryTablesAreComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range RecommendationCategories() {
		s := c.Style()
		assert.NotEmpty(t, s.Label, c)
		assert.NotEmpty(t, s.Icon, c)
		assert.Regexp(t, `^#[0-9A-F]{6}$`, s.Color)
		assert.False(t, seen[c.String()], "duplicate key %s", c)
		seen[c.String()] = true

		back, err := ParseRecommendationCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
	for _, c := range NotificationCategories() {
		assert.NotEmpty(t, c.Style().Label, c)
		assert.NotEmpty(t, c.String())
	}
	_, err := ParseRecommendationCategory("nope")
	assert.Error(t, err)
}

func TestCategoryJSON(t *testing.T) {
	b, err := json.Marshal(Recommendation{ID: "r", Category: Clustering, Savings: decimal.Zero})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"category":"clustering"`)
}

func TestDatasetIntegrity(t *testing.T) {
	d := Load()
	require.NotEmpty(t, d.Warehouses)
	require.Len(t, d.Queries, 42)

	names := map[string]bool{}
	for _, w := range d.Warehouses {
		names[w.Name] = true
	}
	for _, q := range d.Queries {
		assert.True(t, names[q.Warehouse], q.Warehouse)
	}
	for _, r := range d.Recommendations {
		if r.QueryID != "" {
			q, ok := d.Query(r.QueryID)
			require.True(t, ok, r.QueryID)
			assert.Equal(t, r.Warehouse, q.Warehouse, r.ID)
		}
		if r.HasDiff() {
			chunks := diffview.Compute(r.OriginalSQL, r.OptimizedSQL)
			assert.True(t, diffview.StatsOf(chunks).Changed(), r.ID)
		}
	}

	_, ok := d.Recommendation("rec-001")
	assert.True(t, ok)
	_, ok = d.Recommendation("missing")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	o := Load().Summarize()
	assert.Equal(t, 3, o.Accounts)
	assert.Equal(t, 3, o.RunningWarehouse)
	assert.Equal(t, "ETL_WH", o.TopWarehouse)
	assert.Equal(t, 6, o.FailedQueries)
	assert.InDelta(t, 2927.5, o.Credits, 1e-9)
	assert.True(t, decimal.RequireFromString("8782.50").Equal(o.Spend), o.Spend.String())
	assert.True(t, o.PotentialSavings.IsPositive())
}

func TestQuerySchemaSearchAndSort(t *testing.T) {
	d := Load()
	st := listview.NewState(10)
	st.SetSearch("raw.page_views")
	st.ToggleSort("credits")
	st.ToggleSort("credits")

	page := listview.Apply(d.Queries, QuerySchema(), &st)
	require.NotEmpty(t, page.Visible)
	for i, q := range page.Visible {
		assert.Contains(t, q.Text, "RAW.PAGE_VIEWS")
		if i > 0 {
			assert.GreaterOrEqual(t, page.Visible[i-1].Credits, q.Credits)
		}
	}
}

func TestWarehouseSizeSort(t *testing.T) {
	st := listview.NewState(0)
	st.ToggleSort("size")
	page := listview.Apply(Load().Warehouses, WarehouseSchema(), &st)
	assert.Equal(t, "X-Small", page.Visible[0].Size)
	assert.Equal(t, "X-Large", page.Visible[len(page.Visible)-1].Size)
}

func TestInbox(t *testing.T) {
	bus := eventbus.New()
	ch := bus.Subscribe(eventbus.NotificationRead)
	in := NewInbox(Load().Notifications, bus)

	items := in.List()
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].CreatedAt.After(items[i-1].CreatedAt))
	}
	unread := in.Unread()
	require.Equal(t, 5, unread)

	require.NoError(t, in.MarkRead("n-01"))
	assert.Equal(t, unread-1, in.Unread())
	require.NoError(t, in.MarkRead("n-01"))
	assert.Len(t, ch, 1)

	assert.Error(t, in.MarkRead("missing"))
	assert.Equal(t, unread-1, in.MarkAllRead())
	assert.Zero(t, in.Unread())
	assert.Zero(t, in.MarkAllRead())
	assert.Len(t, ch, 2)
}

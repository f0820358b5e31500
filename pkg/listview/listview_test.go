package listview

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginateVisibleLength(t *testing.T) {
	for n := 0; n <= 23; n++ {
		for size := 1; size <= 7; size++ {
			items := ints(n)
			total := TotalPages(n, size)
			for page := 1; page <= max(total, 1); page++ {
				got := Paginate(items, page, size)
				want := 0
				if n > 0 {
					want = min(size, n-(page-1)*size)
				}
				require.Lenf(t, got.Visible, want, "n=%d size=%d page=%d", n, size, page)
				if n > 0 {
					assert.NotEmpty(t, got.Visible)
				}
				assert.Equal(t, total, got.TotalPages)
				assert.Equal(t, n, got.Total)
			}
		}
	}
}

func TestPaginateClampsOutOfRange(t *testing.T) {
	items := ints(10)

	got := Paginate(items, 9, 4)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, []int{8, 9}, got.Visible)

	got = Paginate(items, 0, 4)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, []int{0, 1, 2, 3}, got.Visible)

	got = Paginate(items, 2, 0)
	assert.Equal(t, 1, got.TotalPages)
	assert.Len(t, got.Visible, 10)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
}

type row struct {
	name string
	cost int
}

func TestSortByIsStableBothDirections(t *testing.T) {
	rows := []row{{"a", 2}, {"b", 1}, {"c", 2}, {"d", 1}, {"e", 3}}
	byCost := CompareBy(func(r row) int { return r.cost })

	asc := SortBy(rows, byCost, Ascending)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, names(asc))

	desc := SortBy(rows, byCost, Descending)
	assert.Equal(t, []string{"e", "a", "c", "b", "d"}, names(desc))

	// input untouched
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names(rows))
}

func names(rs []row) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.name
	}
	return out
}

func TestFilterBySearch(t *testing.T) {
	type q struct{ id, text string }
	items := []q{
		{"Q-1", "SELECT * FROM orders"},
		{"Q-2", "select count(*) from users"},
		{"Q-3", "DELETE FROM staging"},
	}
	fields := []func(q) string{
		func(x q) string { return x.id },
		func(x q) string { return x.text },
	}

	assert.Len(t, FilterBySearch(items, "", fields...), 3)
	assert.Len(t, FilterBySearch(items, "   ", fields...), 3)

	got := FilterBySearch(items, "SELECT", fields...)
	require.Len(t, got, 2)
	assert.Equal(t, "Q-1", got[0].id)
	assert.Equal(t, "Q-2", got[1].id)

	got = FilterBySearch(items, "q-3", fields...)
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0].text, "DELETE"))

	assert.Empty(t, FilterBySearch(items, "warehouse", fields...))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Descending, ParseDirection("DESC"))
	assert.Equal(t, Descending, ParseDirection("descending"))
	assert.Equal(t, Ascending, ParseDirection("asc"))
	assert.Equal(t, Ascending, ParseDirection(""))
}

type wh struct {
	name    string
	size    string
	credits int
	created time.Time
}

func whSchema() Schema[wh] {
	return Schema[wh]{
		Columns: []Column[wh]{
			{Key: "name", Title: "Name", Compare: CompareBy(func(w wh) string { return w.name }), Text: func(w wh) string { return w.name }, Searchable: true},
			{Key: "credits", Title: "Credits", Compare: CompareBy(func(w wh) int { return w.credits })},
		},
		Facets: map[string]func(wh) string{
			"size": func(w wh) string { return w.size },
		},
		Date: func(w wh) time.Time { return w.created },
	}
}

func whRows() []wh {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	return []wh{
		{"ANALYTICS_WH", "L", 40, day(1)},
		{"ETL_WH", "XL", 90, day(5)},
		{"BI_WH", "M", 12, day(10)},
		{"ADHOC_WH", "XS", 3, day(15)},
		{"ML_WH", "L", 55, day(20)},
	}
}

func TestApplySearchResetsAndClampsPage(t *testing.T) {
	st := NewState(2)
	st.Page = 3

	p := Apply(whRows(), whSchema(), &st)
	assert.Equal(t, 3, p.Page)
	assert.Len(t, p.Visible, 1)

	st.SetSearch("etl")
	assert.Equal(t, 1, st.Page)
	p = Apply(whRows(), whSchema(), &st)
	require.Len(t, p.Visible, 1)
	assert.Equal(t, "ETL_WH", p.Visible[0].name)

	// Overshoot from paging is clamped on the next Apply.
	st.NextPage()
	st.NextPage()
	p = Apply(whRows(), whSchema(), &st)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, st.Page)
}

func TestApplyEmptyResultStaysOnPageOne(t *testing.T) {
	st := NewState(2)
	st.SetSearch("nothing matches")
	p := Apply(whRows(), whSchema(), &st)
	assert.Empty(t, p.Visible)
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 0, p.TotalPages)
}

func TestApplyFacetsAndDateRange(t *testing.T) {
	st := NewState(10)
	st.Page = 2
	st.ToggleFilterValue("size", "L")
	assert.Equal(t, 1, st.Page)

	p := Apply(whRows(), whSchema(), &st)
	assert.Equal(t, 2, p.Total)

	st.ToggleFilterValue("size", "XS")
	p = Apply(whRows(), whSchema(), &st)
	assert.Equal(t, 3, p.Total)

	st.SetDateRange(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), time.Time{})
	p = Apply(whRows(), whSchema(), &st)
	assert.Equal(t, 2, p.Total)

	st.ToggleFilterValue("size", "L")
	st.ToggleFilterValue("size", "XS")
	assert.NotContains(t, st.Filters, "size")

	st.ClearFilters()
	p = Apply(whRows(), whSchema(), &st)
	assert.Equal(t, 5, p.Total)
}

func TestToggleSortFlipsDirection(t *testing.T) {
	st := NewState(10)
	st.ToggleSort("credits")
	p := Apply(whRows(), whSchema(), &st)
	assert.Equal(t, "ADHOC_WH", p.Visible[0].name)

	st.ToggleSort("credits")
	assert.Equal(t, Descending, st.Sort.Direction)
	p = Apply(whRows(), whSchema(), &st)
	assert.Equal(t, "ETL_WH", p.Visible[0].name)

	st.ToggleSort("name")
	assert.Equal(t, SortConfig{Key: "name", Direction: Ascending}, st.Sort)
}

func TestToggleColumn(t *testing.T) {
	st := NewState(10)
	st.ToggleColumn("credits")
	assert.True(t, st.Hidden["credits"])
	st.ToggleColumn("credits")
	assert.False(t, st.Hidden["credits"])
}

func TestPrevPageFloorsAtOne(t *testing.T) {
	st := NewState(10)
	st.PrevPage()
	assert.Equal(t, 1, st.Page)
}

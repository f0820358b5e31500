package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anavsan/anavsan/pkg/listview"
)

type listResponse[T any] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
	Total      int    `json:"total"`
	Sort       string `json:"sort,omitempty"`
	Direction  string `json:"dir,omitempty"`
}

// listHandler serves items through the same filter → sort → paginate
// pipeline the dashboard lists use. Query parameters: search, sort, dir,
// page, page_size, from, to (YYYY-MM-DD) and one comma-separated parameter
// per facet of the schema.
func listHandler[T any](items func() []T, schema listview.Schema[T], pageSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := parseListState(r.URL.Query(), schema, pageSize)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		page := listview.Apply(items(), schema, &st)
		visible := page.Visible
		if visible == nil {
			visible = []T{}
		}
		writeJSON(w, http.StatusOK, listResponse[T]{
			Items:      visible,
			Page:       page.Page,
			PageSize:   st.PageSize,
			TotalPages: page.TotalPages,
			Total:      page.Total,
			Sort:       st.Sort.Key,
			Direction:  string(st.Sort.Direction),
		})
	}
}

func parseListState[T any](q url.Values, schema listview.Schema[T], pageSize int) (listview.State, error) {
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			return listview.State{}, fmt.Errorf("page_size must be between 1 and 200")
		}
		pageSize = n
	}
	st := listview.NewState(pageSize)
	st.SetSearch(strings.TrimSpace(q.Get("search")))

	for name := range schema.Facets {
		if v := q.Get(name); v != "" {
			st.SetFilter(name, strings.Split(v, ",")...)
		}
	}

	from, err := parseDate(q.Get("from"), false)
	if err != nil {
		return listview.State{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseDate(q.Get("to"), true)
	if err != nil {
		return listview.State{}, fmt.Errorf("to: %w", err)
	}
	if !from.IsZero() || !to.IsZero() {
		if schema.Date == nil {
			return listview.State{}, fmt.Errorf("this list has no date range")
		}
		st.SetDateRange(from, to)
	}

	if key := q.Get("sort"); key != "" {
		col, ok := schema.Column(key)
		if !ok || col.Compare == nil {
			return listview.State{}, fmt.Errorf("cannot sort by %q", key)
		}
		st.Sort = listview.SortConfig{Key: key, Direction: listview.ParseDirection(q.Get("dir"))}
	}

	// Paging is applied last so that the filters above, which reset to page
	// 1, do not discard it. Apply clamps the value.
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return listview.State{}, fmt.Errorf("page must be a number")
		}
		st.Page = n
	}
	return st, nil
}

// parseDate reads YYYY-MM-DD; endOfDay makes the bound inclusive of the whole
// day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

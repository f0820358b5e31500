package listview

import (
	"cmp"
	"slices"
	"time"
)

// Column describes one sortable, optionally searchable column of T.
type Column[T any] struct {
	Key        string
	Title      string
	Compare    func(a, b T) int
	Text       func(T) string
	Searchable bool // Text takes part in the free-text search
}

// Schema binds a list view's columns, multi-select facets and date field.
type Schema[T any] struct {
	Columns []Column[T]
	// Facets maps a filter name to the value an item has for it.
	Facets map[string]func(T) string
	// Date is the field used by the From/To range; nil disables the range.
	Date func(T) time.Time
}

// Column returns the column with the given key.
func (s Schema[T]) Column(key string) (Column[T], bool) {
	for _, c := range s.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (s Schema[T]) searchFields() []func(T) string {
	var fields []func(T) string
	for _, c := range s.Columns {
		if c.Searchable && c.Text != nil {
			fields = append(fields, c.Text)
		}
	}
	return fields
}

// SortConfig is the active sort.
type SortConfig struct {
	Key       string
	Direction Direction
}

// State is the local state of one list view. Every mutation that can shrink
// the result set resets Page to 1, and Apply clamps Page to the page count
// of the current result, so a view can never sit on an out-of-range page.
type State struct {
	Search   string
	Filters  map[string][]string
	From, To time.Time
	Sort     SortConfig
	Hidden   map[string]bool
	Page     int
	PageSize int
}

// NewState returns a state on page 1 with the given page size.
func NewState(pageSize int) State {
	return State{Page: 1, PageSize: pageSize}
}

// SetSearch replaces the search term and returns to page 1.
func (s *State) SetSearch(term string) {
	s.Search = term
	s.Page = 1
}

// SetFilter replaces the selected values of one facet and returns to page 1.
// An empty selection removes the facet.
func (s *State) SetFilter(name string, values ...string) {
	if s.Filters == nil {
		s.Filters = make(map[string][]string)
	}
	if len(values) == 0 {
		delete(s.Filters, name)
	} else {
		s.Filters[name] = slices.Clone(values)
	}
	s.Page = 1
}

// ToggleFilterValue adds or removes one value of a multi-select facet.
func (s *State) ToggleFilterValue(name, value string) {
	cur := s.Filters[name]
	if i := slices.Index(cur, value); i >= 0 {
		s.SetFilter(name, slices.Delete(slices.Clone(cur), i, i+1)...)
		return
	}
	s.SetFilter(name, append(slices.Clone(cur), value)...)
}

// SetDateRange sets the inclusive date range and returns to page 1. Zero
// times leave that side open.
func (s *State) SetDateRange(from, to time.Time) {
	s.From, s.To = from, to
	s.Page = 1
}

// ClearFilters drops search, facets and date range.
func (s *State) ClearFilters() {
	s.Search = ""
	s.Filters = nil
	s.From, s.To = time.Time{}, time.Time{}
	s.Page = 1
}

// ToggleSort sorts by key ascending, or flips the direction when key is
// already the active sort.
func (s *State) ToggleSort(key string) {
	if s.Sort.Key == key {
		if s.Sort.Direction == Descending {
			s.Sort.Direction = Ascending
		} else {
			s.Sort.Direction = Descending
		}
		return
	}
	s.Sort = SortConfig{Key: key, Direction: Ascending}
}

// ToggleColumn hides or shows a column.
func (s *State) ToggleColumn(key string) {
	if s.Hidden == nil {
		s.Hidden = make(map[string]bool)
	}
	s.Hidden[key] = !s.Hidden[key]
}

// NextPage advances one page; Apply clamps overshoot.
func (s *State) NextPage() { s.Page++ }

// PrevPage goes back one page, never below 1.
func (s *State) PrevPage() {
	if s.Page > 1 {
		s.Page--
	}
}

// Clamp pulls Page into [1, max(1, totalPages)].
func (s *State) Clamp(totalPages int) {
	s.Page = ClampPage(s.Page, totalPages)
}

// Apply runs filter → sort → paginate over items and clamps the state's page
// to the result.
func Apply[T any](items []T, schema Schema[T], s *State) Page[T] {
	filtered := FilterBySearch(items, s.Search, schema.searchFields()...)
	filtered = applyFacets(filtered, schema, s.Filters)
	filtered = applyDateRange(filtered, schema, s.From, s.To)

	if col, ok := schema.Column(s.Sort.Key); ok && col.Compare != nil {
		filtered = SortBy(filtered, col.Compare, s.Sort.Direction)
	}

	s.Clamp(TotalPages(len(filtered), s.PageSize))
	return Paginate(filtered, s.Page, s.PageSize)
}

func applyFacets[T any](items []T, schema Schema[T], filters map[string][]string) []T {
	if len(filters) == 0 {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		keep := true
		for name, values := range filters {
			get, ok := schema.Facets[name]
			if !ok || len(values) == 0 {
				continue
			}
			if !slices.Contains(values, get(it)) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}

func applyDateRange[T any](items []T, schema Schema[T], from, to time.Time) []T {
	if schema.Date == nil || (from.IsZero() && to.IsZero()) {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		d := schema.Date(it)
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// CompareBy builds a Compare func from a key extractor.
func CompareBy[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(key(a), key(b)) }
}

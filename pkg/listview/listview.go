// Package listview provides the filter, sort and paginate pipeline shared by
// every list view, plus the per-view state those views keep.
package listview

import (
	"slices"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// ParseDirection maps "asc"/"desc" style input to a Direction, defaulting to
// Ascending.
func ParseDirection(s string) Direction {
	switch strings.ToLower(s) {
	case "desc", "descending":
		return Descending
	default:
		return Ascending
	}
}

// Page is one visible window of a list.
type Page[T any] struct {
	Visible    []T
	Page       int // 1-indexed page actually shown
	TotalPages int
	Total      int // number of items before paging
}

// Paginate returns the slice of items visible on the 1-indexed page. Pages
// outside [1, TotalPages] are clamped. A non-positive pageSize yields a single
// page holding everything.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	n := len(items)
	if pageSize <= 0 {
		pageSize = max(n, 1)
	}
	total := TotalPages(n, pageSize)
	page = ClampPage(page, total)

	start := (page - 1) * pageSize
	if start > n {
		start = n
	}
	end := min(start+pageSize, n)

	return Page[T]{
		Visible:    items[start:end],
		Page:       page,
		TotalPages: total,
		Total:      n,
	}
}

// TotalPages is ceil(n / pageSize); zero when there are no items.
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage keeps page within [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// SortBy returns a sorted copy of items. The sort is stable: items that
// compare equal keep their original relative order in both directions.
func SortBy[T any](items []T, cmp func(a, b T) int, dir Direction) []T {
	out := slices.Clone(items)
	if cmp == nil {
		return out
	}
	if dir == Descending {
		slices.SortStableFunc(out, func(a, b T) int { return cmp(b, a) })
		return out
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// FilterBySearch keeps items where any of the given fields contains term,
// case-insensitively. An empty (or blank) term matches everything.
func FilterBySearch[T any](items []T, term string, fields ...func(T) string) []T {
	term = strings.TrimSpace(term)
	if term == "" {
		return slices.Clone(items)
	}
	needle := strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(it)), needle) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anavsan/anavsan/pkg/listview"
)

func byDecimal[T any](get func(T) decimal.Decimal) func(a, b T) int {
	return func(a, b T) int { return get(a).Cmp(get(b)) }
}

func byTime[T any](get func(T) time.Time) func(a, b T) int {
	return func(a, b T) int { return get(a).Compare(get(b)) }
}

// WarehouseSchema describes the warehouse list.
func WarehouseSchema() listview.Schema[Warehouse] {
	return listview.Schema[Warehouse]{
		Columns: []listview.Column[Warehouse]{
			{Key: "name", Title: "Warehouse", Compare: listview.CompareBy(func(w Warehouse) string { return w.Name }), Text: func(w Warehouse) string { return w.Name }, Searchable: true},
			{Key: "account", Title: "Account", Compare: listview.CompareBy(func(w Warehouse) string { return w.Account }), Text: func(w Warehouse) string { return w.Account }, Searchable: true},
			{Key: "size", Title: "Size", Compare: listview.CompareBy(func(w Warehouse) int { return sizeRank(w.Size) }), Text: func(w Warehouse) string { return w.Size }},
			{Key: "state", Title: "State", Compare: listview.CompareBy(func(w Warehouse) string { return w.State }), Text: func(w Warehouse) string { return w.State }},
			{Key: "credits", Title: "Credits", Compare: listview.CompareBy(func(w Warehouse) float64 { return w.Credits })},
			{Key: "cost", Title: "Cost", Compare: byDecimal(func(w Warehouse) decimal.Decimal { return w.Cost })},
			{Key: "queries", Title: "Queries", Compare: listview.CompareBy(func(w Warehouse) int { return w.Queries })},
			{Key: "owner", Title: "Owner", Compare: listview.CompareBy(func(w Warehouse) string { return w.Owner }), Text: func(w Warehouse) string { return w.Owner }, Searchable: true},
		},
		Facets: map[string]func(Warehouse) string{
			"size":    func(w Warehouse) string { return w.Size },
			"state":   func(w Warehouse) string { return w.State },
			"account": func(w Warehouse) string { return w.Account },
		},
		Date: func(w Warehouse) time.Time { return w.CreatedAt },
	}
}

var sizeOrder = []string{"x-small", "small", "medium", "large", "x-large", "2x-large", "3x-large", "4x-large"}

func sizeRank(size string) int {
	for i, s := range sizeOrder {
		if strings.EqualFold(s, size) {
			return i
		}
	}
	return len(sizeOrder)
}

// QuerySchema describes the query history list.
func QuerySchema() listview.Schema[Query] {
	return listview.Schema[Query]{
		Columns: []listview.Column[Query]{
			{Key: "id", Title: "Query ID", Compare: listview.CompareBy(func(q Query) string { return q.ID }), Text: func(q Query) string { return q.ID }, Searchable: true},
			{Key: "text", Title: "SQL", Compare: listview.CompareBy(func(q Query) string { return q.Text }), Text: func(q Query) string { return q.Text }, Searchable: true},
			{Key: "user", Title: "User", Compare: listview.CompareBy(func(q Query) string { return q.User }), Text: func(q Query) string { return q.User }, Searchable: true},
			{Key: "warehouse", Title: "Warehouse", Compare: listview.CompareBy(func(q Query) string { return q.Warehouse }), Text: func(q Query) string { return q.Warehouse }, Searchable: true},
			{Key: "status", Title: "Status", Compare: listview.CompareBy(func(q Query) string { return q.Status }), Text: func(q Query) string { return q.Status }},
			{Key: "duration", Title: "Duration", Compare: listview.CompareBy(func(q Query) time.Duration { return q.Duration })},
			{Key: "credits", Title: "Credits", Compare: listview.CompareBy(func(q Query) float64 { return q.Credits })},
			{Key: "cost", Title: "Cost", Compare: byDecimal(func(q Query) decimal.Decimal { return q.Cost })},
			{Key: "started_at", Title: "Started", Compare: byTime(func(q Query) time.Time { return q.StartedAt })},
		},
		Facets: map[string]func(Query) string{
			"status":    func(q Query) string { return q.Status },
			"warehouse": func(q Query) string { return q.Warehouse },
			"user":      func(q Query) string { return q.User },
		},
		Date: func(q Query) time.Time { return q.StartedAt },
	}
}

// RecommendationSchema describes the recommendation list.
func RecommendationSchema() listview.Schema[Recommendation] {
	return listview.Schema[Recommendation]{
		Columns: []listview.Column[Recommendation]{
			{Key: "title", Title: "Recommendation", Compare: listview.CompareBy(func(r Recommendation) string { return r.Title }), Text: func(r Recommendation) string { return r.Title }, Searchable: true},
			{Key: "category", Title: "Category", Compare: listview.CompareBy(func(r Recommendation) int { return int(r.Category) }), Text: func(r Recommendation) string { return r.Category.Style().Label }, Searchable: true},
			{Key: "impact", Title: "Impact", Compare: listview.CompareBy(func(r Recommendation) int { return impactRank(r.Impact) }), Text: func(r Recommendation) string { return r.Impact }},
			{Key: "savings", Title: "Savings/mo", Compare: byDecimal(func(r Recommendation) decimal.Decimal { return r.Savings })},
			{Key: "warehouse", Title: "Warehouse", Compare: listview.CompareBy(func(r Recommendation) string { return r.Warehouse }), Text: func(r Recommendation) string { return r.Warehouse }, Searchable: true},
		},
		Facets: map[string]func(Recommendation) string{
			"category": func(r Recommendation) string { return r.Category.String() },
			"impact":   func(r Recommendation) string { return r.Impact },
		},
	}
}

func impactRank(impact string) int {
	switch impact {
	case "high":
		return 2
	case "medium":
		return 1
	default:
		return 0
	}
}

// NotificationSchema describes the notification center list.
func NotificationSchema() listview.Schema[Notification] {
	return listview.Schema[Notification]{
		Columns: []listview.Column[Notification]{
			{Key: "title", Title: "Title", Compare: listview.CompareBy(func(n Notification) string { return n.Title }), Text: func(n Notification) string { return n.Title }, Searchable: true},
			{Key: "body", Title: "Details", Text: func(n Notification) string { return n.Body }, Searchable: true},
			{Key: "category", Title: "Category", Compare: listview.CompareBy(func(n Notification) int { return int(n.Category) }), Text: func(n Notification) string { return n.Category.Style().Label }},
			{Key: "created_at", Title: "When", Compare: byTime(func(n Notification) time.Time { return n.CreatedAt })},
		},
		Facets: map[string]func(Notification) string{
			"category": func(n Notification) string { return n.Category.String() },
			"read": func(n Notification) string {
				if n.Read {
					return "read"
				}
				return "unread"
			},
		},
		Date: func(n Notification) time.Time { return n.CreatedAt },
	}
}

// StorageSchema describes the storage list.
func StorageSchema() listview.Schema[StorageItem] {
	total := func(s StorageItem) int64 { return s.ActiveBytes + s.TimeTravelBytes + s.FailsafeBytes }
	return listview.Schema[StorageItem]{
		Columns: []listview.Column[StorageItem]{
			{Key: "table", Title: "Table", Compare: listview.CompareBy(StorageItem.FullName), Text: StorageItem.FullName, Searchable: true},
			{Key: "bytes", Title: "Size", Compare: listview.CompareBy(total)},
			{Key: "cost", Title: "Cost/mo", Compare: byDecimal(func(s StorageItem) decimal.Decimal { return s.MonthlyCost })},
			{Key: "last_accessed", Title: "Last accessed", Compare: byTime(func(s StorageItem) time.Time { return s.LastAccessed })},
		},
		Facets: map[string]func(StorageItem) string{
			"database": func(s StorageItem) string { return s.Database },
		},
		Date: func(s StorageItem) time.Time { return s.LastAccessed },
	}
}

// FullName is DATABASE.SCHEMA.TABLE.
func (s StorageItem) FullName() string { return s.Database + "." + s.Schema + "." + s.Table }

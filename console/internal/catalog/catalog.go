// Package catalog holds the console's static dataset: Snowflake accounts,
// warehouses, queries, storage, invoices, recommendations, notifications and
// team members.
package catalog

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anavsan/anavsan/console/internal/team"
)

// Account is a connected Snowflake account.
type Account struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Region     string          `json:"region"`
	Cloud      string          `json:"cloud"`
	Edition    string          `json:"edition"`
	Credits    float64         `json:"credits"`
	Spend      decimal.Decimal `json:"spend"`
	Warehouses int             `json:"warehouses"`
}

// Warehouse is a virtual warehouse and its spend this month.
type Warehouse struct {
	Name        string          `json:"name"`
	Account     string          `json:"account"`
	Size        string          `json:"size"`
	State       string          `json:"state"` // running | suspended
	Credits     float64         `json:"credits"`
	Cost        decimal.Decimal `json:"cost"`
	Queries     int             `json:"queries"`
	AutoSuspend time.Duration   `json:"auto_suspend"`
	Owner       string          `json:"owner"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Query is one entry of the query history.
type Query struct {
	ID           string          `json:"id"`
	Text         string          `json:"text"`
	User         string          `json:"user"`
	Warehouse    string          `json:"warehouse"`
	Status       string          `json:"status"` // success | failed | running
	Duration     time.Duration   `json:"duration"`
	Credits      float64         `json:"credits"`
	Cost         decimal.Decimal `json:"cost"`
	BytesScanned int64           `json:"bytes_scanned"`
	StartedAt    time.Time       `json:"started_at"`
}

// StorageItem is a table's storage footprint.
type StorageItem struct {
	Database        string          `json:"database"`
	Schema          string          `json:"schema"`
	Table           string          `json:"table"`
	ActiveBytes     int64           `json:"active_bytes"`
	TimeTravelBytes int64           `json:"time_travel_bytes"`
	FailsafeBytes   int64           `json:"failsafe_bytes"`
	MonthlyCost     decimal.Decimal `json:"monthly_cost"`
	LastAccessed    time.Time       `json:"last_accessed"`
}

// Invoice is a past Anavsan invoice.
type Invoice struct {
	Number   string          `json:"number"`
	Period   string          `json:"period"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status"` // paid | pending | overdue
	IssuedAt time.Time       `json:"issued_at"`
}

// Recommendation is an AI-generated saving opportunity. Query rewrites carry
// the original and optimized SQL for the diff viewer.
type Recommendation struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Category     RecommendationCategory `json:"category"`
	Impact       string                 `json:"impact"` // high | medium | low
	Savings      decimal.Decimal        `json:"monthly_savings"`
	Warehouse    string                 `json:"warehouse"`
	QueryID      string                 `json:"query_id,omitempty"`
	Description  string                 `json:"description"`
	OriginalSQL  string                 `json:"original_sql,omitempty"`
	OptimizedSQL string                 `json:"optimized_sql,omitempty"`
}

// HasDiff reports whether the recommendation has SQL to compare.
func (r Recommendation) HasDiff() bool { return r.OriginalSQL != "" || r.OptimizedSQL != "" }

// Dataset is the full static dataset.
type Dataset struct {
	Accounts        []Account
	Warehouses      []Warehouse
	Queries         []Query
	Storage         []StorageItem
	Invoices        []Invoice
	Recommendations []Recommendation
	Notifications   []Notification
	Members         []team.User
}

// Recommendation returns the recommendation with id.
func (d *Dataset) Recommendation(id string) (Recommendation, bool) {
	i := slices.IndexFunc(d.Recommendations, func(r Recommendation) bool { return r.ID == id })
	if i < 0 {
		return Recommendation{}, false
	}
	return d.Recommendations[i], true
}

// Query returns the query with id.
func (d *Dataset) Query(id string) (Query, bool) {
	i := slices.IndexFunc(d.Queries, func(q Query) bool { return q.ID == id })
	if i < 0 {
		return Query{}, false
	}
	return d.Queries[i], true
}

// Overview is the headline numbers of the overview page.
type Overview struct {
	Spend            decimal.Decimal `json:"spend"`
	Credits          float64         `json:"credits"`
	Accounts         int             `json:"accounts"`
	RunningWarehouse int             `json:"running_warehouses"`
	Queries          int             `json:"queries"`
	FailedQueries    int             `json:"failed_queries"`
	StorageBytes     int64           `json:"storage_bytes"`
	PotentialSavings decimal.Decimal `json:"potential_savings"`
	TopWarehouse     string          `json:"top_warehouse"`
}

// Summarize computes the overview.
func (d *Dataset) Summarize() Overview {
	o := Overview{
		Spend:            decimal.Zero,
		PotentialSavings: decimal.Zero,
		Accounts:         len(d.Accounts),
		Queries:          len(d.Queries),
	}
	var top decimal.Decimal
	for _, w := range d.Warehouses {
		o.Spend = o.Spend.Add(w.Cost)
		o.Credits += w.Credits
		if w.State == "running" {
			o.RunningWarehouse++
		}
		if w.Cost.GreaterThan(top) {
			top, o.TopWarehouse = w.Cost, w.Name
		}
	}
	for _, q := range d.Queries {
		if q.Status == "failed" {
			o.FailedQueries++
		}
	}
	for _, s := range d.Storage {
		o.StorageBytes += s.ActiveBytes + s.TimeTravelBytes + s.FailsafeBytes
	}
	for _, r := range d.Recommendations {
		o.PotentialSavings = o.PotentialSavings.Add(r.Savings)
	}
	return o
}

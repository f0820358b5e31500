package catalog

import (
	"encoding/json"
	"fmt"
)

// Style is how a category is drawn.
type Style struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"` // hex
}

// RecommendationCategory groups optimisation advice.
type RecommendationCategory int

const (
	WarehouseSizing RecommendationCategory = iota
	QueryRewrite
	Clustering
	StorageCleanup
	AutoSuspend
	recommendationCategoryCount
)

var recommendationStyles = [...]Style{
	WarehouseSizing: {Label: "Warehouse sizing", Icon: "⚖", Color: "#0EA5E9"},
	QueryRewrite:    {Label: "Query rewrite", Icon: "✎", Color: "#8B5CF6"},
	Clustering:      {Label: "Clustering", Icon: "▦", Color: "#14B8A6"},
	StorageCleanup:  {Label: "Storage cleanup", Icon: "🗑", Color: "#F59E0B"},
	AutoSuspend:     {Label: "Auto-suspend", Icon: "⏸", Color: "#10B981"},
}

// Adding a category without a style entry fails to compile here.
var _ = [1]int{}[len(recommendationStyles)-int(recommendationCategoryCount)]

var recommendationKeys = [...]string{
	WarehouseSizing: "warehouse_sizing",
	QueryRewrite:    "query_rewrite",
	Clustering:      "clustering",
	StorageCleanup:  "storage_cleanup",
	AutoSuspend:     "auto_suspend",
}

var _ = [1]int{}[len(recommendationKeys)-int(recommendationCategoryCount)]

// RecommendationCategories lists every category in order.
func RecommendationCategories() []RecommendationCategory {
	out := make([]RecommendationCategory, recommendationCategoryCount)
	for i := range out {
		out[i] = RecommendationCategory(i)
	}
	return out
}

func (c RecommendationCategory) Style() Style   { return recommendationStyles[c] }
func (c RecommendationCategory) String() string { return recommendationKeys[c] }

func (c RecommendationCategory) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

// ParseRecommendationCategory maps a key back to its category.
func ParseRecommendationCategory(s string) (RecommendationCategory, error) {
	for i, k := range recommendationKeys {
		if k == s {
			return RecommendationCategory(i), nil
		}
	}
	return 0, fmt.Errorf("unknown recommendation category %q", s)
}

// NotificationCategory classifies alerts in the notification center.
type NotificationCategory int

const (
	CostSpike NotificationCategory = iota
	BudgetAlert
	NewRecommendation
	QueryFailure
	BillingNotice
	SystemNotice
	notificationCategoryCount
)

var notificationStyles = [...]Style{
	CostSpike:         {Label: "Cost spike", Icon: "▲", Color: "#EF4444"},
	BudgetAlert:       {Label: "Budget", Icon: "◔", Color: "#F59E0B"},
	NewRecommendation: {Label: "Recommendation", Icon: "✦", Color: "#0EA5E9"},
	QueryFailure:      {Label: "Query failure", Icon: "✕", Color: "#DC2626"},
	BillingNotice:     {Label: "Billing", Icon: "$", Color: "#10B981"},
	SystemNotice:      {Label: "System", Icon: "ℹ", Color: "#6B7280"},
}

var _ = [1]int{}[len(notificationStyles)-int(notificationCategoryCount)]

var notificationKeys = [...]string{
	CostSpike:         "cost_spike",
	BudgetAlert:       "budget_alert",
	NewRecommendation: "recommendation",
	QueryFailure:      "query_failure",
	BillingNotice:     "billing",
	SystemNotice:      "system",
}

var _ = [1]int{}[len(notificationKeys)-int(notificationCategoryCount)]

// NotificationCategories lists every category in order.
func NotificationCategories() []NotificationCategory {
	out := make([]NotificationCategory, notificationCategoryCount)
	for i := range out {
		out[i] = NotificationCategory(i)
	}
	return out
}

func (c NotificationCategory) Style() Style   { return notificationStyles[c] }
func (c NotificationCategory) String() string { return notificationKeys[c] }

func (c NotificationCategory) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/payment"
)

func newWarehousePage(data *catalog.Dataset, pageSize int) *listPage[catalog.Warehouse] {
	return newListPage("Warehouses", catalog.WarehouseSchema(),
		func() []catalog.Warehouse { return data.Warehouses },
		func(w catalog.Warehouse) []string {
			return []string{
				w.Name,
				w.Account,
				w.Size,
				stateLabel(w.State),
				fmt.Sprintf("%.1f", w.Credits),
				payment.Money(w.Cost),
				fmt.Sprintf("%d", w.Queries),
				w.Owner,
			}
		}, pageSize, "state")
}

func newQueryPage(data *catalog.Dataset, pageSize int) *listPage[catalog.Query] {
	return newListPage("Queries", catalog.QuerySchema(),
		func() []catalog.Query { return data.Queries },
		func(q catalog.Query) []string {
			return []string{
				q.ID,
				q.Text,
				q.User,
				q.Warehouse,
				stateLabel(q.Status),
				q.Duration.Round(100 * time.Millisecond).String(),
				fmt.Sprintf("%.2f", q.Credits),
				payment.Money(q.Cost),
				q.StartedAt.Format("Jan 02 15:04"),
			}
		}, pageSize, "status")
}

func newStoragePage(data *catalog.Dataset, pageSize int) *listPage[catalog.StorageItem] {
	return newListPage("Storage", catalog.StorageSchema(),
		func() []catalog.StorageItem { return data.Storage },
		func(s catalog.StorageItem) []string {
			return []string{
				s.FullName(),
				humanize.IBytes(uint64(s.ActiveBytes + s.TimeTravelBytes + s.FailsafeBytes)),
				payment.Money(s.MonthlyCost),
				s.LastAccessed.Format("Jan 02, 2006"),
			}
		}, pageSize, "database")
}

func newRecommendationPage(data *catalog.Dataset, pageSize int) *listPage[catalog.Recommendation] {
	return newListPage("Recommendations", catalog.RecommendationSchema(),
		func() []catalog.Recommendation { return data.Recommendations },
		func(r catalog.Recommendation) []string {
			st := r.Category.Style()
			return []string{
				r.Title,
				lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color)).Render(st.Icon + " " + st.Label),
				r.Impact,
				payment.Money(r.Savings),
				r.Warehouse,
			}
		}, pageSize, "category")
}

func newNotificationPage(inbox *catalog.Inbox, pageSize int) *listPage[catalog.Notification] {
	return newListPage("Notifications", catalog.NotificationSchema(),
		inbox.List,
		func(n catalog.Notification) []string {
			st := n.Category.Style()
			title := n.Title
			if !n.Read {
				title = "● " + title
			}
			return []string{
				title,
				n.Body,
				lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color)).Render(st.Icon + " " + st.Label),
				n.CreatedAt.Format("Jan 02 15:04"),
			}
		}, pageSize, "read")
}

func stateLabel(s string) string {
	switch s {
	case "running", "success":
		return "● " + s
	case "failed":
		return "✗ " + s
	default:
		return "○ " + s
	}
}

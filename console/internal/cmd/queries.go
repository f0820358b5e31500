package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/tui"
	"github.com/anavsan/anavsan/pkg/listview"
)

func newQueriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queries",
		Short: "List query history with search, filters, sorting and paging",
		Args:  cobra.NoArgs,
		RunE:  runQueries,
	}
	cmd.Flags().StringP("search", "s", "", "free-text search over id, SQL, user and warehouse")
	cmd.Flags().StringSlice("status", nil, "only these statuses (success, failed, running)")
	cmd.Flags().StringSlice("warehouse", nil, "only these warehouses")
	cmd.Flags().String("sort", "", "sort column: id, user, warehouse, status, duration, credits, cost, started_at")
	cmd.Flags().Bool("desc", false, "sort descending")
	cmd.Flags().IntP("page", "p", 1, "page to show")
	cmd.Flags().Int("page-size", 0, "rows per page (default from config)")
	return cmd
}

func runQueries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	schema := catalog.QuerySchema()

	pageSize, _ := cmd.Flags().GetInt("page-size")
	if pageSize <= 0 {
		pageSize = cfg.Dashboard.PageSize
	}
	state := listview.NewState(pageSize)

	search, _ := cmd.Flags().GetString("search")
	state.SetSearch(search)
	statuses, _ := cmd.Flags().GetStringSlice("status")
	state.SetFilter("status", statuses...)
	warehouses, _ := cmd.Flags().GetStringSlice("warehouse")
	state.SetFilter("warehouse", warehouses...)

	if key, _ := cmd.Flags().GetString("sort"); key != "" {
		if _, ok := schema.Column(key); !ok {
			return fmt.Errorf("unknown sort column %q", key)
		}
		state.ToggleSort(key)
		if desc, _ := cmd.Flags().GetBool("desc"); desc {
			state.ToggleSort(key)
		}
	}
	// Set last: every filter change above returns to page 1.
	state.Page, _ = cmd.Flags().GetInt("page")

	page := listview.Apply(catalog.Load().Queries, schema, &state)

	out := cmd.OutOrStdout()
	if page.Total == 0 {
		_, _ = fmt.Fprintln(out, "No queries match.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tWAREHOUSE\tUSER\tDURATION\tCOST\tSQL")
	for _, q := range page.Visible {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			q.ID, q.Status, q.Warehouse, q.User, q.Duration, payment.Money(q.Cost), tui.Truncate(strings.Join(strings.Fields(q.Text), " "), 48))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "\nPage %d of %d · %d queries\n", page.Page, page.TotalPages, page.Total)
	return nil
}

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anavsan/anavsan/console/internal/eventbus"
	"github.com/anavsan/anavsan/console/internal/prefs"
	"github.com/anavsan/anavsan/console/internal/tui/dashboard"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard (default in a terminal)",
		Args:  cobra.NoArgs,
		RunE:  runDashboard,
	}
	cmd.Flags().String("page", "", "page to open on: overview, warehouses, queries, recommendations, diff, storage, notifications, plan, change-plan, team")
	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	start := dashboard.PageOverview
	if f := cmd.Flags().Lookup("page"); f != nil && f.Value.String() != "" {
		p, ok := dashboard.ParsePage(f.Value.String())
		if !ok {
			return fmt.Errorf("unknown page %q", f.Value.String())
		}
		start = p
	}

	// The alt screen owns the terminal, so logs go to a file or nowhere.
	w, closeLog, err := openLogFile(cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()

	bus := eventbus.New()
	defer bus.Close()
	logger := newLogger(cfg.Logging, w, bus)

	a, err := newApp(cfg, logger, bus)
	if err != nil {
		return err
	}
	store, err := prefs.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("dashboard starting", "version", version, "plan", a.account.Snapshot().Plan)
	return dashboard.Run(ctx, dashboard.Options{
		Data:      a.data,
		Inbox:     a.inbox,
		Account:   a.account,
		Roster:    a.roster,
		Prefs:     store,
		Checkout:  a.checkoutOptions(),
		PageSize:  cfg.Dashboard.PageSize,
		Start:     start,
		TickEvery: time.Minute,
		Logger:    logger,
	}, bus)
}

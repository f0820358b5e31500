package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/config"
	"github.com/anavsan/anavsan/console/internal/eventbus"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/receipt"
	"github.com/anavsan/anavsan/console/internal/team"
	"github.com/anavsan/anavsan/console/internal/tui/checkout"
)

const defaultConfigPath = "anavsan.json"

// app is the in-memory console every command works against.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	bus     *eventbus.Bus
	data    *catalog.Dataset
	inbox   *catalog.Inbox
	account *billing.Account
	roster  *team.Roster
	now     func() time.Time
}

// newApp seeds the subscription from cfg.Account and loads the dataset.
// bus may be nil.
func newApp(cfg *config.Config, logger *slog.Logger, bus *eventbus.Bus) (*app, error) {
	a := &app{cfg: cfg, logger: logger, bus: bus, now: time.Now}

	sub, err := seedSubscription(cfg.Account, a.now())
	if err != nil {
		return nil, err
	}
	a.data = catalog.Load()
	a.inbox = catalog.NewInbox(a.data.Notifications, bus)
	a.roster = team.NewRoster(team.FitSeats(sub, a.data.Members), bus, logger)
	a.account, err = billing.NewAccount(sub, logger, billing.WithBus(bus), billing.WithClock(a.now))
	if err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}
	return a, nil
}

// seedSubscription builds the starting subscription. A missing period end
// starts a fresh period at now.
func seedSubscription(ac config.AccountConfig, now time.Time) (billing.Subscription, error) {
	plan, err := billing.ParsePlan(ac.Plan)
	if err != nil {
		return billing.Subscription{}, fmt.Errorf("account.plan: %w", err)
	}
	cycle, err := billing.ParseCycle(ac.BillingCycle)
	if err != nil {
		return billing.Subscription{}, fmt.Errorf("account.billing_cycle: %w", err)
	}
	end, err := ac.PeriodEndTime()
	if err != nil {
		return billing.Subscription{}, fmt.Errorf("account.period_end: %w", err)
	}
	if end.IsZero() {
		end = billing.NextPeriodEnd(now, cycle)
	}
	sub := billing.Subscription{
		Plan:             plan,
		Status:           billing.Status(strings.ToLower(ac.Status)),
		Cycle:            cycle,
		Seats:            ac.Seats,
		CurrentPeriodEnd: end,
	}
	if err := sub.Validate(); err != nil {
		return billing.Subscription{}, err
	}
	return sub, nil
}

// gateway is the simulated payment gateway configured by payment.*.
func (a *app) gateway() payment.Gateway {
	return &payment.SimulatedGateway{
		Delay:    a.cfg.Payment.SimulatedDelay.Duration,
		FailWith: payment.Code(a.cfg.Payment.FailWith),
		Clock:    a.now,
	}
}

func (a *app) checkoutOptions() checkout.Options {
	return checkout.Options{
		Gateway:    a.gateway(),
		Printer:    receipt.NewGenerator(receipt.DefaultIssuer),
		ReceiptDir: a.cfg.Payment.ReceiptDir,
		Logger:     a.logger,
	}
}

// loadConfig reads .env, then the config file named by --config (default
// anavsan.json). A missing file leaves every default in place.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(resolveConfigPath(cmd, defaultConfigPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveConfigPath returns the --config / -c flag value, or defaultPath.
func resolveConfigPath(cmd *cobra.Command, defaultPath string) string {
	if f := cmd.Flag("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	// Check parent (root) persistent flags too.
	if f := cmd.Root().PersistentFlags().Lookup("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	return defaultPath
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// newLogger builds the slog logger for cfg writing to w. With a bus, records
// at info and above are mirrored onto it for the activity panel.
func newLogger(cfg config.LoggingConfig, w io.Writer, bus *eventbus.Bus) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	if bus != nil {
		handler = eventbus.NewSlogHandler(handler, bus, slog.LevelInfo)
	}
	return slog.New(handler)
}

// openLogFile opens path for appending. An empty path discards output.
func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// cycleFlag reads and parses the --cycle flag.
func cycleFlag(cmd *cobra.Command) (billing.Cycle, error) {
	s, _ := cmd.Flags().GetString("cycle")
	return billing.ParseCycle(s)
}

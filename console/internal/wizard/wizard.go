// Package wizard provides an interactive setup wizard for the anavsan console.
package wizard

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/config"
	"github.com/anavsan/anavsan/pkg/cli"
)

// Plans offered at setup. Enterprise accounts are provisioned by sales.
var setupPlans = []billing.Plan{billing.Trial, billing.Individual, billing.Team}

// Wizard drives the interactive config setup.
type Wizard struct {
	p *cli.Prompter
}

// New creates a Wizard using the given Prompter.
func New(p *cli.Prompter) *Wizard {
	return &Wizard{p: p}
}

// Run asks for every setting, writes the config file and returns its path.
// An empty outputPath is asked for.
func (w *Wizard) Run(outputPath string) (string, error) {
	fmt.Fprintln(w.p.Out)
	fmt.Fprintln(w.p.Out, "  Anavsan Console Setup")
	fmt.Fprintln(w.p.Out, strings.Repeat("─", 42))
	fmt.Fprintln(w.p.Out)

	cfg := config.Default()

	fmt.Fprintln(w.p.Out, "Subscription")
	w.configureAccount(&cfg.Account)
	fmt.Fprintln(w.p.Out)

	fmt.Fprintln(w.p.Out, "Logging")
	cfg.Logging.Level = w.askOneOf("  Log level (debug/info/warn/error)", "info", "debug", "info", "warn", "error")
	formats := []string{"text", "json"}
	cfg.Logging.Format = formats[w.p.Choose("  Log format", formats, 0)]
	cfg.Logging.File = w.p.Ask("  Dashboard log file (empty discards)", "")
	fmt.Fprintln(w.p.Out)

	fmt.Fprintln(w.p.Out, "Preferences")
	drivers := []string{"sqlite", "memory"}
	cfg.Storage.Driver = drivers[w.p.Choose("  Storage", []string{"sqlite (kept between runs)", "memory (forgotten on exit)"}, 0)]
	if cfg.Storage.Driver == "sqlite" {
		cfg.Storage.DSN = w.p.Ask("  Database path", cfg.Storage.DSN)
	} else {
		cfg.Storage.DSN = ""
	}
	fmt.Fprintln(w.p.Out)

	fmt.Fprintln(w.p.Out, "Payments and API")
	cfg.Payment.SimulatedDelay.Duration = w.askDuration("  Simulated payment delay", cfg.Payment.SimulatedDelay.Duration)
	cfg.Payment.ReceiptDir = w.p.Ask("  Receipt directory", cfg.Payment.ReceiptDir)
	cfg.Server.Addr = w.p.Ask("  API listen address", cfg.Server.Addr)
	cfg.Dashboard.PageSize = w.p.AskInt("  Rows per page", cfg.Dashboard.PageSize, 1)

	fmt.Fprintln(w.p.Out)
	if outputPath == "" {
		outputPath = w.p.Ask("Config file output path", "./anavsan.json")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(outputPath, append(data, '\n'), 0600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	// Read it back so a bad answer surfaces now rather than on first run.
	if _, err := config.Load(outputPath); err != nil {
		return "", err
	}

	fmt.Fprintf(w.p.Out, "\n  Config written to %s\n\n", outputPath)
	fmt.Fprintln(w.p.Out, "  Next steps:")
	fmt.Fprintf(w.p.Out, "    anavsan -c %s\n\n", outputPath)
	return outputPath, nil
}

func (w *Wizard) configureAccount(a *config.AccountConfig) {
	names := make([]string, len(setupPlans))
	for i, p := range setupPlans {
		spec := billing.MustLookup(p)
		names[i] = fmt.Sprintf("%s: %s", spec.Name, spec.Tagline)
	}
	plan := setupPlans[w.p.Choose("  Current plan", names, 0)]
	a.Plan = string(plan)

	if plan == billing.Trial {
		a.Status = string(billing.Trialing)
		a.BillingCycle = string(billing.Monthly)
		a.Seats = 1
	} else {
		a.Status = string(billing.Active)
		cycles := []billing.Cycle{billing.Monthly, billing.Yearly}
		a.BillingCycle = string(cycles[w.p.Choose("  Billing cycle", []string{"Monthly", "Yearly"}, 0)])
		a.Seats = 1
		if plan == billing.Team {
			a.Seats = w.p.AskInt("  Seats in use", 1, 1)
		}
	}

	for {
		a.PeriodEnd = w.p.Ask("  Current period ends (YYYY-MM-DD, empty starts today)", "")
		if _, err := a.PeriodEndTime(); err == nil {
			return
		}
		fmt.Fprintln(w.p.Out, "  Please enter a date like 2025-06-30.")
	}
}

// askOneOf repeats the question until the answer is one of allowed. Input
// that runs out yields def.
func (w *Wizard) askOneOf(question, def string, allowed ...string) string {
	for {
		ans := strings.ToLower(w.p.Ask(question, def))
		if slices.Contains(allowed, ans) {
			return ans
		}
		fmt.Fprintf(w.p.Out, "  Please enter one of: %s.\n", strings.Join(allowed, ", "))
	}
}

func (w *Wizard) askDuration(question string, def time.Duration) time.Duration {
	for {
		d, err := time.ParseDuration(w.p.Ask(question, def.String()))
		if err == nil && d >= 0 {
			return d
		}
		fmt.Fprintln(w.p.Out, "  Please enter a duration like 2s or 500ms.")
	}
}

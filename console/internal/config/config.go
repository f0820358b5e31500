// Package config handles console configuration loading and validation.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the top-level console configuration.
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Storage   StorageConfig   `json:"storage"`
	Payment   PaymentConfig   `json:"payment"`
	Server    ServerConfig    `json:"server"`
	Dashboard DashboardConfig `json:"dashboard"`
	Account   AccountConfig   `json:"account"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `json:"level"`          // debug | info | warn | error
	Format string `json:"format"`         // json | text
	File   string `json:"file,omitempty"` // dashboard log file; empty discards
}

// StorageConfig locates the preference store.
type StorageConfig struct {
	Driver string `json:"driver"` // sqlite | memory
	DSN    string `json:"dsn"`
}

// PaymentConfig tunes the simulated gateway.
type PaymentConfig struct {
	SimulatedDelay Duration `json:"simulated_delay"`
	ReceiptDir     string   `json:"receipt_dir"`
	FailWith       string   `json:"fail_with,omitempty"` // declined | network | invalid
}

// ServerConfig is the local read-only API.
type ServerConfig struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// DashboardConfig tunes list views.
type DashboardConfig struct {
	PageSize int `json:"page_size"`
}

// AccountConfig seeds the subscription the console starts with.
type AccountConfig struct {
	Plan         string `json:"plan"`
	Status       string `json:"status"`
	BillingCycle string `json:"billing_cycle,omitempty"`
	Seats        int    `json:"seats"`
	PeriodEnd    string `json:"period_end,omitempty"` // YYYY-MM-DD
}

// PeriodEndTime parses PeriodEnd; zero when unset.
func (a AccountConfig) PeriodEndTime() (time.Time, error) {
	if a.PeriodEnd == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, a.PeriodEnd)
}

// Duration is a JSON-friendly time.Duration (accepts strings like "2s", "500ms").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		dur, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		d.Duration = dur
	case float64:
		d.Duration = time.Duration(val * float64(time.Second))
	default:
		return fmt.Errorf("invalid duration: %v", v)
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// DefaultSimulatedDelay applies when payment.simulated_delay is absent. An
// explicit "0s" keeps the gateway instant.
const DefaultSimulatedDelay = 2 * time.Second

// Default returns a config with every default applied.
func Default() *Config {
	cfg := newConfig()
	cfg.applyDefaults()
	return cfg
}

// newConfig holds the defaults that zero cannot stand for, so they survive
// only when the file and environment leave them unset.
func newConfig() *Config {
	return &Config{
		Payment: PaymentConfig{SimulatedDelay: Duration{DefaultSimulatedDelay}},
	}
}

// Load reads the config file at path, applies ANAVSAN_* environment
// overrides, validates and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := newConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from files into the process environment
// without overriding variables that are already set. Missing files are
// skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ANAVSAN_LOG_LEVEL", &c.Logging.Level)
	str("ANAVSAN_LOG_FORMAT", &c.Logging.Format)
	str("ANAVSAN_LOG_FILE", &c.Logging.File)
	str("ANAVSAN_PREFS_DRIVER", &c.Storage.Driver)
	str("ANAVSAN_PREFS_DSN", &c.Storage.DSN)
	str("ANAVSAN_API_ADDR", &c.Server.Addr)
	str("ANAVSAN_RECEIPT_DIR", &c.Payment.ReceiptDir)
	str("ANAVSAN_PAYMENT_FAIL_WITH", &c.Payment.FailWith)

	if v, ok := lookup("ANAVSAN_PAYMENT_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ANAVSAN_PAYMENT_DELAY: %w", err)
		}
		c.Payment.SimulatedDelay.Duration = d
	}
	if v, ok := lookup("ANAVSAN_PAGE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ANAVSAN_PAGE_SIZE: %w", err)
		}
		c.Dashboard.PageSize = n
	}
	if v, ok := lookup("ANAVSAN_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	return nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error")
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text")
	}
	switch c.Storage.Driver {
	case "", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported storage.driver: %q", c.Storage.Driver)
	}
	switch c.Payment.FailWith {
	case "", "declined", "network", "invalid":
	default:
		return fmt.Errorf("payment.fail_with must be declined, network, or invalid")
	}
	if c.Payment.SimulatedDelay.Duration < 0 {
		return fmt.Errorf("payment.simulated_delay must not be negative")
	}
	if c.Dashboard.PageSize < 0 {
		return fmt.Errorf("dashboard.page_size must not be negative")
	}
	if c.Account.Seats < 0 {
		return fmt.Errorf("account.seats must not be negative")
	}
	if _, err := c.Account.PeriodEndTime(); err != nil {
		return fmt.Errorf("account.period_end must be YYYY-MM-DD: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.DSN == "" && c.Storage.Driver == "sqlite" {
		c.Storage.DSN = defaultPrefsPath()
	}
	if c.Payment.ReceiptDir == "" {
		c.Payment.ReceiptDir = "./receipts"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8787"
	}
	if c.Dashboard.PageSize == 0 {
		c.Dashboard.PageSize = 10
	}
	if c.Account.Plan == "" {
		c.Account.Plan = "trial"
	}
	if c.Account.Status == "" {
		if c.Account.Plan == "trial" {
			c.Account.Status = "trialing"
		} else {
			c.Account.Status = "active"
		}
	}
	if c.Account.BillingCycle == "" {
		c.Account.BillingCycle = "monthly"
	}
	if c.Account.Seats == 0 {
		c.Account.Seats = 1
	}
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "anavsan-prefs.db"
	}
	return filepath.Join(dir, "anavsan", "prefs.db")
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDuration_UnmarshalJSON_String(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"1500ms"`), &d); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v", d.Duration)
	}
}

func TestDuration_UnmarshalJSON_Number(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`2`), &d); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 2*time.Second {
		t.Errorf("expected 2s, got %v", d.Duration)
	}
}

func TestDuration_UnmarshalJSON_Invalid(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Error("expected error for invalid duration string")
	}
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Error("expected error for boolean duration")
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Duration{2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2s"` {
		t.Errorf("expected \"2s\", got %s", data)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN == "" {
		t.Errorf("storage defaults = %+v", cfg.Storage)
	}
	if cfg.Payment.SimulatedDelay.Duration != 2*time.Second {
		t.Errorf("payment delay = %v, want 2s", cfg.Payment.SimulatedDelay)
	}
	if cfg.Dashboard.PageSize != 10 {
		t.Errorf("page size = %d, want 10", cfg.Dashboard.PageSize)
	}
	if cfg.Account.Plan != "trial" || cfg.Account.Status != "trialing" || cfg.Account.Seats != 1 {
		t.Errorf("account defaults = %+v", cfg.Account)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `{
		"logging": {"level": "debug", "format": "json"},
		"storage": {"driver": "memory"},
		"payment": {"simulated_delay": "250ms", "fail_with": "declined"},
		"dashboard": {"page_size": 25},
		"account": {"plan": "team", "seats": 5, "billing_cycle": "yearly", "period_end": "2025-07-01"}
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Storage.Driver != "memory" || cfg.Storage.DSN != "" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Payment.SimulatedDelay.Duration != 250*time.Millisecond {
		t.Errorf("delay = %v", cfg.Payment.SimulatedDelay)
	}
	if cfg.Payment.FailWith != "declined" {
		t.Errorf("fail_with = %q", cfg.Payment.FailWith)
	}
	if cfg.Dashboard.PageSize != 25 {
		t.Errorf("page size = %d", cfg.Dashboard.PageSize)
	}
	if cfg.Account.Status != "active" {
		t.Errorf("status = %q, want active for a paid plan", cfg.Account.Status)
	}
	end, err := cfg.Account.PeriodEndTime()
	if err != nil {
		t.Fatal(err)
	}
	if !end.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("period end = %v", end)
	}
}

func TestLoad_ZeroDelayIsKept(t *testing.T) {
	for _, body := range []string{
		`{"payment": {"simulated_delay": "0s"}}`,
		`{"payment": {"simulated_delay": 0}}`,
	} {
		cfg, err := Load(writeConfig(t, body))
		if err != nil {
			t.Fatalf("Load(%s): %v", body, err)
		}
		if cfg.Payment.SimulatedDelay.Duration != 0 {
			t.Errorf("Load(%s) delay = %v, want 0", body, cfg.Payment.SimulatedDelay)
		}
	}

	t.Setenv("ANAVSAN_PAYMENT_DELAY", "0")
	cfg, err := Load(writeConfig(t, `{"payment": {"simulated_delay": "3s"}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Payment.SimulatedDelay.Duration != 0 {
		t.Errorf("env delay = %v, want 0", cfg.Payment.SimulatedDelay)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"level", `{"logging": {"level": "loud"}}`, "logging.level"},
		{"format", `{"logging": {"format": "xml"}}`, "logging.format"},
		{"driver", `{"storage": {"driver": "postgres"}}`, "storage.driver"},
		{"fail_with", `{"payment": {"fail_with": "maybe"}}`, "payment.fail_with"},
		{"delay", `{"payment": {"simulated_delay": "-1s"}}`, "simulated_delay"},
		{"page size", `{"dashboard": {"page_size": -1}}`, "page_size"},
		{"seats", `{"account": {"seats": -2}}`, "account.seats"},
		{"period end", `{"account": {"period_end": "July"}}`, "period_end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_BadJSON(t *testing.T) {
	if _, err := Load(writeConfig(t, `{`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ANAVSAN_LOG_LEVEL":       "warn",
		"ANAVSAN_PREFS_DSN":       "/tmp/x.db",
		"ANAVSAN_API_ADDR":        ":9999",
		"ANAVSAN_PAYMENT_DELAY":   "10ms",
		"ANAVSAN_PAGE_SIZE":       "5",
		"ANAVSAN_ALLOWED_ORIGINS": "http://a,http://b",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var cfg Config
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Storage.DSN != "/tmp/x.db" {
		t.Errorf("dsn = %q", cfg.Storage.DSN)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Payment.SimulatedDelay.Duration != 10*time.Millisecond {
		t.Errorf("delay = %v", cfg.Payment.SimulatedDelay)
	}
	if cfg.Dashboard.PageSize != 5 {
		t.Errorf("page size = %d", cfg.Dashboard.PageSize)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestApplyEnv_BadValues(t *testing.T) {
	for _, key := range []string{"ANAVSAN_PAYMENT_DELAY", "ANAVSAN_PAGE_SIZE"} {
		t.Run(key, func(t *testing.T) {
			var cfg Config
			err := cfg.applyEnv(func(k string) (string, bool) {
				if k == key {
					return "garbage", true
				}
				return "", false
			})
			if err == nil {
				t.Fatalf("expected error for %s=garbage", key)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ANAVSAN_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANAVSAN_TEST_DOTENV", "")
	os.Unsetenv("ANAVSAN_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("ANAVSAN_TEST_DOTENV"); got != "from-file" {
		t.Errorf("ANAVSAN_TEST_DOTENV = %q, want from-file", got)
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ANAVSAN_TEST_KEEP=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANAVSAN_TEST_KEEP", "shell")
	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("ANAVSAN_TEST_KEEP"); got != "shell" {
		t.Errorf("ANAVSAN_TEST_KEEP = %q, want shell", got)
	}
}

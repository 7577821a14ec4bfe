package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("DOMPET_HTTP_PORT")
	_ = os.Unsetenv("DOMPET_TIMEZONE")
	_ = os.Unsetenv("DOMPET_DISPATCH_HOUR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8080 || cfg.Timezone != "Asia/Jakarta" || cfg.DispatchHour != 8 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	_ = os.Setenv("DOMPET_TIMEZONE", "Europe/Berlin")
	defer func() { _ = os.Unsetenv("DOMPET_TIMEZONE") }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.Timezone != "Europe/Berlin" {
		t.Fatalf("timezone env override failed, got %s", cfg.Timezone)
	}
}

func TestLoad_RejectsBadDispatchHour(t *testing.T) {
	_ = os.Setenv("DOMPET_DISPATCH_HOUR", "24")
	defer func() { _ = os.Unsetenv("DOMPET_DISPATCH_HOUR") }()

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range dispatch hour")
	}
}

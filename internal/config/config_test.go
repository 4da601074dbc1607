package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_ADDR", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("ACCESS_TTL_SECONDS", "")
	t.Setenv("ADMIN_EMAILS", "")
	t.Setenv("DEV_LOGIN_ENABLED", "")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Fatalf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Fatalf("AccessTTL = %v", cfg.AccessTTL)
	}
	if cfg.DevLoginEnabled {
		t.Fatal("dev login should be off by default")
	}
	if len(cfg.AdminEmails) != 0 {
		t.Fatalf("AdminEmails = %v", cfg.AdminEmails)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("ACCESS_TTL_SECONDS", "60")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("ADMIN_EMAILS", " PHTCON@ucsb.edu, ,cgaucho@ucsb.edu")
	t.Setenv("DEV_LOGIN_ENABLED", "true")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()
	if cfg.StoreBackend != BackendPostgres {
		t.Fatalf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.AccessTTL != time.Minute {
		t.Fatalf("AccessTTL = %v", cfg.AccessTTL)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("RateLimitRPS = %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 20 {
		t.Fatalf("RateLimitBurst = %d, want fallback 20", cfg.RateLimitBurst)
	}
	if !cfg.DevLoginEnabled {
		t.Fatal("expected dev login enabled")
	}
	if !cfg.IsAdminEmail("phtcon@UCSB.edu") || !cfg.IsAdminEmail("cgaucho@ucsb.edu") {
		t.Fatalf("admin emails not matched: %v", cfg.AdminEmails)
	}
	if cfg.IsAdminEmail("someone@ucsb.edu") {
		t.Fatal("unexpected admin")
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("GIN_MODE", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DatabaseDriver != DriverSQLite {
		t.Fatalf("unexpected driver: %s", cfg.DatabaseDriver)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token ttl: %v", cfg.TokenTTL)
	}
	if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
		t.Fatalf("unexpected page sizes: %d/%d", cfg.DefaultPageSize, cfg.MaxPageSize)
	}
}

func TestLoadParsesDuration(t *testing.T) {
	t.Setenv("GIN_MODE", "test")
	t.Setenv("TOKEN_TTL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("unexpected token ttl: %v", cfg.TokenTTL)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{DatabaseDriver: "oracle", TokenTTL: time.Hour, DefaultPageSize: 20, MaxPageSize: 100}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidateReleaseRequiresSecret(t *testing.T) {
	cfg := &Config{
		GinMode:         "release",
		DatabaseDriver:  DriverPostgres,
		DatabaseURL:     "postgres://localhost/tasks",
		TokenTTL:        time.Hour,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without TOKEN_SECRET")
	}

	cfg.TokenSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short TOKEN_SECRET")
	}

	cfg.TokenSecret = strings.Repeat("k", minTokenSecretLength)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package dbpool

import (
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig("postgres://u:p@localhost:5432/graphs", 0)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}

	if cfg.MaxConns != DefaultMaxConns {
		t.Errorf("MaxConns = %d, want %d", cfg.MaxConns, DefaultMaxConns)
	}

	if cfg.MinConns != minConns {
		t.Errorf("MinConns = %d", cfg.MinConns)
	}

	if got := cfg.ConnConfig.RuntimeParams["statement_timeout"]; got != "30000" {
		t.Errorf("statement_timeout = %q", got)
	}

	if cfg.MaxConnLifetime != 30*time.Minute {
		t.Errorf("MaxConnLifetime = %v", cfg.MaxConnLifetime)
	}
}

func TestParseConfig_SmallPool(t *testing.T) {
	cfg, err := parseConfig("postgres://u:p@localhost/graphs", 1)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}

	if cfg.MaxConns != 1 || cfg.MinConns != 1 {
		t.Errorf("conns = %d/%d, want 1/1", cfg.MinConns, cfg.MaxConns)
	}
}

func TestParseConfig_BadURL(t *testing.T) {
	if _, err := parseConfig("postgres://%zz", 5); err == nil {
		t.Error("expected error for malformed URL")
	}
}

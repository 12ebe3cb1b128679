package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  user: watchdog
  password: secret
  name: watchdog
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Analyzer.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want 5", cfg.Analyzer.BatchSize)
	}
	if cfg.Analyzer.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.Analyzer.PollInterval)
	}
	if cfg.Analyzer.Tolerance != 0.6 {
		t.Errorf("Tolerance = %v, want 0.6", cfg.Analyzer.Tolerance)
	}
	if cfg.Analyzer.WorkerTimeout != 2*time.Minute {
		t.Errorf("WorkerTimeout = %v, want 2m", cfg.Analyzer.WorkerTimeout)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
analyzer:
  batch_size: 2
  poll_interval: 10s
  tolerance: 0.45
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Analyzer.BatchSize != 2 {
		t.Errorf("BatchSize = %d, want 2", cfg.Analyzer.BatchSize)
	}
	if cfg.Analyzer.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.Analyzer.PollInterval)
	}
	if cfg.Analyzer.Tolerance != 0.45 {
		t.Errorf("Tolerance = %v, want 0.45", cfg.Analyzer.Tolerance)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
analyzer:
  batch_size: 3
`)

	t.Setenv("WD_DB_HOST", "override.internal")
	t.Setenv("WD_BATCH_SIZE", "8")
	t.Setenv("WD_POLL_INTERVAL", "30s")
	t.Setenv("WD_TOLERANCE", "0.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Host != "override.internal" {
		t.Errorf("Database.Host = %q, want override.internal", cfg.Database.Host)
	}
	if cfg.Analyzer.BatchSize != 8 {
		t.Errorf("BatchSize = %d, want 8", cfg.Analyzer.BatchSize)
	}
	if cfg.Analyzer.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.Analyzer.PollInterval)
	}
	if cfg.Analyzer.Tolerance != 0.5 {
		t.Errorf("Tolerance = %v, want 0.5", cfg.Analyzer.Tolerance)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "localhost", Port: 5432, Name: "watchdog", User: "wd", Password: "pw"}
	want := "postgres://wd:pw@localhost:5432/watchdog?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

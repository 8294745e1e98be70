package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_FromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	data := []byte("listen: 127.0.0.1:9999\ndb_path: " + filepath.Join(dir, "p.db") + "\nadmin_password: fromfile\nsession_ttl: 2h\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("PLANNER_ADMIN_PASSWORD", "fromenv")
	t.Setenv("PLANNER_APP_PASSWORD", "open sesame")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9999" {
		t.Errorf("Expected listen from file, got %q", cfg.Listen)
	}
	if cfg.AdminPassword != "fromenv" {
		t.Errorf("Expected env to override file, got %q", cfg.AdminPassword)
	}
	if cfg.AppPassword != "open sesame" {
		t.Errorf("Expected app password from env, got %q", cfg.AppPassword)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("Expected 2h session ttl, got %v", cfg.SessionTTL)
	}
}

func TestLoadConfig_MissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PLANNER_LISTEN", ":8081")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/planner")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Listen != ":8081" || cfg.DatabaseURL != "postgres://u:p@db/planner" {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.SessionTTL != 168*time.Hour {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	if filepath.Base(cfg.DBPath) != "planner.db" {
		t.Errorf("Expected default db path, got %q", cfg.DBPath)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{SessionTTL: time.Hour}).Validate(); err == nil {
		t.Error("Expected error for empty listen address")
	}
	if err := (Config{Listen: DefaultListen}).Validate(); err == nil {
		t.Error("Expected error for zero session ttl")
	}
}

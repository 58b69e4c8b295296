package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults when nothing is set", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.Addr != ":8080" {
			t.Fatalf("expected default addr, got %q", cfg.Addr)
		}
		if cfg.SQLitePath != "checkin.db" {
			t.Fatalf("expected default sqlite path, got %q", cfg.SQLitePath)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL, got %v", cfg.SessionTTL)
		}
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("CHECKIN_ADDR", ":9999")
		t.Setenv("CHECKIN_SQLITE_PATH", "override.db")
		t.Setenv("CHECKIN_SESSION_TTL", "2h")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.Addr != ":9999" {
			t.Fatalf("expected env addr, got %q", cfg.Addr)
		}
		if cfg.SQLitePath != "override.db" {
			t.Fatalf("expected env sqlite path, got %q", cfg.SQLitePath)
		}
		if cfg.SessionTTL != 2*time.Hour {
			t.Fatalf("expected env session TTL, got %v", cfg.SessionTTL)
		}
	})

	t.Run("file settings sit below environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		body := "addr: \":7070\"\nsqlite_path: from-file.db\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		t.Setenv("CHECKIN_CONFIG", path)
		t.Setenv("CHECKIN_ADDR", ":6060")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.Addr != ":6060" {
			t.Fatalf("expected env to win over file, got %q", cfg.Addr)
		}
		if cfg.SQLitePath != "from-file.db" {
			t.Fatalf("expected file sqlite path, got %q", cfg.SQLitePath)
		}
	})

	t.Run("rejects non-positive session TTL", func(t *testing.T) {
		t.Setenv("CHECKIN_SESSION_TTL", "-1h")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for negative session TTL")
		}
	})
}

// Package config loads service configuration from defaults, an optional
// YAML file, and CHECKIN_-prefixed environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config captures the runtime settings of the check-in service.
type Config struct {
	Addr       string        `koanf:"addr"`
	SQLitePath string        `koanf:"sqlite_path"`
	SessionTTL time.Duration `koanf:"session_ttl"`
	LogLevel   string        `koanf:"log_level"`

	// Bootstrap credentials for the first staff account. Optional; when
	// both are set and the account does not exist yet, it is created at
	// startup.
	StaffEmail    string `koanf:"staff_email"`
	StaffPassword string `koanf:"staff_password"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Addr:       ":8080",
		SQLitePath: "checkin.db",
		SessionTTL: 24 * time.Hour,
		LogLevel:   "info",
	}
}

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CHECKIN_CONFIG is set
//  3. env (prefix CHECKIN_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CHECKIN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: CHECKIN_ADDR, CHECKIN_SQLITE_PATH, ...
	// Underscores are preserved so keys match the koanf tags above.
	envProvider := env.Provider("CHECKIN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "checkin_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.SQLitePath == "" {
		return nil, errors.New("sqlite_path must not be empty")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("session_ttl must be positive")
	}

	return &cfg, nil
}

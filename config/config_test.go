package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("READ_TIMEOUT", "10s")
	t.Setenv("WRITE_TIMEOUT", "20s")
	t.Setenv("IDLE_TIMEOUT", "30s")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("LANGUAGE_PRIORITY", "de, ja ,,en")
	t.Setenv("AUDIT_DB_PATH", "/tmp/audit.db")

	cfg := LoadConfig()

	if cfg.ServerPort != "9090" {
		t.Errorf("expected 9090, got %s", cfg.ServerPort)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s, got %s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 20*time.Second {
		t.Errorf("expected 20s, got %s", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.IdleTimeout)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.RequestTimeout)
	}
	if want := []string{"de", "ja", "en"}; !reflect.DeepEqual(cfg.LanguagePriority, want) {
		t.Errorf("expected %v, got %v", want, cfg.LanguagePriority)
	}
	if cfg.AuditDBPath != "/tmp/audit.db" {
		t.Errorf("expected /tmp/audit.db, got %s", cfg.AuditDBPath)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "not-a-duration")
	t.Setenv("LANGUAGE_PRIORITY", " , ")

	cfg := LoadConfig()

	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("expected default 30s, got %s", cfg.ReadTimeout)
	}
	if !reflect.DeepEqual(cfg.LanguagePriority, DefaultLanguagePriority) {
		t.Errorf("expected %v, got %v", DefaultLanguagePriority, cfg.LanguagePriority)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.ServerPort = "" }},
		{"port not a number", func(c *Config) { c.ServerPort = "http" }},
		{"zero read timeout", func(c *Config) { c.ReadTimeout = 0 }},
		{"negative request timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"no languages", func(c *Config) { c.LanguagePriority = nil }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			if err := ValidateConfig(cfg); err == nil {
				t.Errorf("ValidateConfig() error = nil, want error")
			}
		})
	}
}

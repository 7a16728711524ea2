package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:5000/")
	t.Setenv("SESSION_DB_PATH", "/tmp/castline-test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BackendURL != "http://localhost:5000" {
		t.Errorf("BackendURL = %q, want trailing slash trimmed", cfg.BackendURL)
	}
	if cfg.APIBase() != "http://localhost:5000/api" {
		t.Errorf("APIBase() = %q", cfg.APIBase())
	}
	if cfg.SocketURL != "ws://localhost:5000/socket" {
		t.Errorf("SocketURL = %q, want ws://localhost:5000/socket", cfg.SocketURL)
	}
	if cfg.ChatDelivery != DeliveryConfirmed {
		t.Errorf("ChatDelivery = %q, want %q", cfg.ChatDelivery, DeliveryConfirmed)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("HTTPTimeout = %v, want 0", cfg.HTTPTimeout)
	}
	if cfg.Dev.JWTSecret == "" || cfg.Dev.AuthRateLimit != 20 {
		t.Errorf("Dev = %+v, want default secret and rate 20", cfg.Dev)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://api.example.com")
	t.Setenv("SESSION_DB_PATH", "/tmp/castline-test.db")
	t.Setenv("CHAT_DELIVERY", "EAGER")
	t.Setenv("HTTP_TIMEOUT", "15")
	t.Setenv("DEV_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("DEV_SEED", "off")
	t.Setenv("DEV_TOKEN_TTL", "1h")
	t.Setenv("DEV_AUTH_RATE", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SocketURL != "wss://api.example.com/socket" {
		t.Errorf("SocketURL = %q", cfg.SocketURL)
	}
	if cfg.ChatDelivery != DeliveryEager {
		t.Errorf("ChatDelivery = %q, want eager", cfg.ChatDelivery)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
	}
	if len(cfg.Dev.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 entries", cfg.Dev.AllowedOrigins)
	}
	if cfg.Dev.Seed {
		t.Error("Seed should be disabled by DEV_SEED=off")
	}
	if cfg.Dev.TokenTTL != time.Hour || cfg.Dev.AuthRateLimit != 0 {
		t.Errorf("TokenTTL = %v, AuthRateLimit = %d", cfg.Dev.TokenTTL, cfg.Dev.AuthRateLimit)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			BackendURL:    "http://localhost:5000",
			SocketURL:     "ws://localhost:5000/socket",
			SessionDBPath: "session.db",
			ChatDelivery:  DeliveryConfirmed,
			Log:           LogConfig{Level: "info", Format: "json"},
			Dev:           DevServerConfig{Port: "5000", JWTSecret: "s"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"relative backend", func(c *Config) { c.BackendURL = "/api" }, "BACKEND_URL"},
		{"unknown delivery", func(c *Config) { c.ChatDelivery = "maybe" }, "CHAT_DELIVERY"},
		{"negative timeout", func(c *Config) { c.HTTPTimeout = -time.Second }, "HTTP_TIMEOUT"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "LOG_FORMAT"},
		{"empty session path", func(c *Config) { c.SessionDBPath = "" }, "SESSION_DB_PATH"},
		{"empty jwt secret", func(c *Config) { c.Dev.JWTSecret = "" }, "DEV_JWT_SECRET"},
		{"negative rate", func(c *Config) { c.Dev.AuthRateLimit = -1 }, "DEV_AUTH_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

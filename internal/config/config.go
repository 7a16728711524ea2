// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Delivery modes for outgoing chat messages.
const (
	DeliveryConfirmed = "confirmed"
	DeliveryEager     = "eager"
)

// Config holds all application configuration.
type Config struct {
	BackendURL    string
	SocketURL     string
	SessionDBPath string
	ChatDelivery  string
	HTTPTimeout   time.Duration // 0 = no timeout
	Log           LogConfig
	Dev           DevServerConfig
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// DevServerConfig configures the in-memory development backend.
type DevServerConfig struct {
	Port           string
	AllowedOrigins []string
	Seed           bool // preload demo users, posts and a casting call
	JWTSecret      string
	TokenTTL       time.Duration // 0 = tokens never expire
	AuthRateLimit  int           // login/register requests per minute per IP; 0 = off
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	backend := strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/")

	cfg := &Config{
		BackendURL:    backend,
		SocketURL:     getEnv("SOCKET_URL", deriveSocketURL(backend)),
		SessionDBPath: getEnv("SESSION_DB_PATH", defaultSessionPath()),
		ChatDelivery:  strings.ToLower(getEnv("CHAT_DELIVERY", DeliveryConfirmed)),
		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", 0),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Dev: DevServerConfig{
			Port:           getEnv("DEV_PORT", "5000"),
			AllowedOrigins: splitList(getEnv("DEV_ALLOWED_ORIGINS", "*")),
			Seed:           getEnvBool("DEV_SEED", true),
			JWTSecret:      getEnv("DEV_JWT_SECRET", "castline-dev-secret"),
			TokenTTL:       getEnvDuration("DEV_TOKEN_TTL", 30*24*time.Hour),
			AuthRateLimit:  getEnvInt("DEV_AUTH_RATE", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL cannot be empty")
	}
	if u, err := url.Parse(c.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", c.BackendURL)
	}
	if c.SocketURL == "" {
		return fmt.Errorf("SOCKET_URL cannot be empty")
	}
	if c.SessionDBPath == "" {
		return fmt.Errorf("SESSION_DB_PATH cannot be empty")
	}
	switch c.ChatDelivery {
	case DeliveryConfirmed, DeliveryEager:
	default:
		return fmt.Errorf("CHAT_DELIVERY must be %q or %q, got %q", DeliveryConfirmed, DeliveryEager, c.ChatDelivery)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be >= 0")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	if c.Dev.Port == "" {
		return fmt.Errorf("DEV_PORT cannot be empty")
	}
	if c.Dev.JWTSecret == "" {
		return fmt.Errorf("DEV_JWT_SECRET cannot be empty")
	}
	if c.Dev.TokenTTL < 0 || c.Dev.AuthRateLimit < 0 {
		return fmt.Errorf("DEV_TOKEN_TTL and DEV_AUTH_RATE must be >= 0")
	}
	return nil
}

// APIBase returns the REST prefix every endpoint path is joined onto.
func (c *Config) APIBase() string {
	return c.BackendURL + "/api"
}

// deriveSocketURL maps http(s)://host to ws(s)://host/socket.
func deriveSocketURL(backend string) string {
	u, err := url.Parse(backend)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/socket"
	return u.String()
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data/session.db"
	}
	return filepath.Join(home, ".castline", "session.db")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare integers are seconds.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

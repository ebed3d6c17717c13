// Package config loads the wellwatch service configuration.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/wellwatch/internal/alert"
	"github.com/ppiankov/wellwatch/internal/audit"
	"github.com/ppiankov/wellwatch/internal/resources"
	"github.com/ppiankov/wellwatch/internal/session"
)

// Default addresses.
const (
	DefaultGRPCAddr = "127.0.0.1:9743"
	DefaultHTTPAddr = "127.0.0.1:9744"
)

// AuditConfig selects the audit sinks. An empty path disables that sink.
type AuditConfig struct {
	JSONLPath  string `yaml:"jsonl_path"`
	SQLitePath string `yaml:"sqlite_path"`
	QueueSize  int    `yaml:"queue_size"`
}

// SessionConfig bounds the in-memory session windows.
type SessionConfig struct {
	Window        int           `yaml:"window"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Config is the service configuration.
type Config struct {
	GRPCAddr      string              `yaml:"grpc_addr"`
	HTTPAddr      string              `yaml:"http_addr"`
	LexiconPath   string              `yaml:"lexicon_path"`
	DefaultLocale string              `yaml:"default_locale"`
	Audit         AuditConfig         `yaml:"audit"`
	Session       SessionConfig       `yaml:"session"`
	Alerts        []alert.AlertConfig `yaml:"alerts"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Log           LogConfig           `yaml:"log"`
}

// Dir returns ~/.wellwatch, or "" when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wellwatch")
}

// DefaultPath returns ~/.wellwatch/config.yaml.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	jsonl := ""
	if dir := Dir(); dir != "" {
		jsonl = filepath.Join(dir, "audit.jsonl")
	}
	return &Config{
		GRPCAddr:      DefaultGRPCAddr,
		HTTPAddr:      DefaultHTTPAddr,
		DefaultLocale: resources.DefaultLocale,
		Audit: AuditConfig{
			JSONLPath: jsonl,
			QueueSize: audit.DefaultQueueSize,
		},
		Session: SessionConfig{
			Window:        session.DefaultWindow,
			IdleTTL:       session.DefaultIdleTTL,
			SweepInterval: time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "wellwatch",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the service configuration.
// Empty path falls back to ~/.wellwatch/config.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads the configuration and returns the SHA-256 of the raw
// bytes on disk. When no file exists the hash is that of empty input.
func LoadWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return Default(), hashBytes(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), hashBytes(nil), nil
		}
		return nil, "", fmt.Errorf("config: read %s: %w", path, err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, hashBytes(data), nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if c.GRPCAddr == "" && c.HTTPAddr == "" {
		return fmt.Errorf("at least one of grpc_addr or http_addr is required")
	}
	if c.Audit.QueueSize < 0 {
		return fmt.Errorf("audit.queue_size must be >= 0, got %d", c.Audit.QueueSize)
	}
	if c.Session.Window < 0 {
		return fmt.Errorf("session.window must be >= 0, got %d", c.Session.Window)
	}
	if c.Session.IdleTTL < 0 || c.Session.SweepInterval < 0 {
		return fmt.Errorf("session durations must be >= 0")
	}
	for i, a := range c.Alerts {
		if a.URL == "" {
			return fmt.Errorf("alerts[%d]: url is required", i)
		}
		switch a.Format {
		case "", "generic", "slack", "pagerduty":
		default:
			return fmt.Errorf("alerts[%d]: unknown format %q", i, a.Format)
		}
		for _, e := range a.Events {
			if !alert.KnownEvent(e) {
				return fmt.Errorf("alerts[%d]: unknown event %q", i, e)
			}
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// NewLogger builds the slog logger described by the log section.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

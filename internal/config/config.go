// Package config loads poschunk settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// HTTP
	Listen          string `toml:"listen"`
	ReadTimeoutSec  int    `toml:"read_timeout_sec"`
	WriteTimeoutSec int    `toml:"write_timeout_sec"`
	MaxBodyBytes    int64  `toml:"max_body_bytes"`

	// Storage: ":memory:" or a file path
	Database string `toml:"database"`

	// Grammars
	GrammarDir     string `toml:"grammar_dir"`
	DefaultGrammar string `toml:"default_grammar"`

	Log LogConfig `toml:"log"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // trace|debug|info|warn|error
	Format string `toml:"format"` // console|json
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Listen:          ":8095",
		ReadTimeoutSec:  30,
		WriteTimeoutSec: 60,
		MaxBodyBytes:    4 << 20, // 4MB
		Database:        "poschunk.db",
		DefaultGrammar:  "default",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path (when non-empty) over the defaults, then applies
// POSCHUNK_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.Listen = envOr("POSCHUNK_LISTEN", cfg.Listen)
	cfg.Database = envOr("POSCHUNK_DB", cfg.Database)
	cfg.GrammarDir = envOr("POSCHUNK_GRAMMAR_DIR", cfg.GrammarDir)
	cfg.DefaultGrammar = envOr("POSCHUNK_DEFAULT_GRAMMAR", cfg.DefaultGrammar)
	cfg.Log.Level = envOr("POSCHUNK_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envOr("POSCHUNK_LOG_FORMAT", cfg.Log.Format)
	maxBody, err := envInt64("POSCHUNK_MAX_BODY_BYTES", cfg.MaxBodyBytes)
	if err != nil {
		return cfg, err
	}
	cfg.MaxBodyBytes = maxBody

	return cfg, nil
}

// Validate checks the settings for values the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database is required"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}
	if c.ReadTimeoutSec <= 0 || c.WriteTimeoutSec <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ReadTimeout returns the HTTP read timeout.
func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the HTTP write timeout.
func (c Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSec) * time.Second
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// Package config loads replica settings from defaults, an optional config
// file and GOPHSYNC_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iudanet/gophsync/internal/validation"
)

// EnvPrefix is the prefix of environment overrides (GOPHSYNC_NODE_ID, ...).
const EnvPrefix = "GOPHSYNC"

// Config is the complete replica configuration
type Config struct {
	ClockDB    string        `mapstructure:"clock_db"`
	MessagesDB string        `mapstructure:"messages_db"`
	NodeID     string        `mapstructure:"node_id"`
	LogLevel   string        `mapstructure:"log_level"`
	Sync       SyncConfig    `mapstructure:"sync"`
	MaxDrift   time.Duration `mapstructure:"max_drift"`
	PruneWidth int           `mapstructure:"prune_width"`
}

// SyncConfig bounds the full sync loop
type SyncConfig struct {
	DefaultLookback time.Duration `mapstructure:"default_lookback"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	MaxRepeats      int           `mapstructure:"max_repeats"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("clock_db", "gophsync-clock.db")
	v.SetDefault("messages_db", "gophsync-messages.db")

	// Clock defaults
	v.SetDefault("node_id", "") // generated on first run
	v.SetDefault("max_drift", 5*time.Minute)
	v.SetDefault("prune_width", 2)

	v.SetDefault("log_level", "info")

	// Sync loop defaults
	v.SetDefault("sync.max_attempts", 100)
	v.SetDefault("sync.max_repeats", 10)
	v.SetDefault("sync.default_lookback", 5*time.Minute)
}

// NewViper returns a Viper instance with defaults and environment binding.
// configFile is optional; when set it must exist.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	// Set up environment variable binding
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return v, nil
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for values the replica cannot run with
func (c *Config) Validate() error {
	if c.ClockDB == "" {
		return fmt.Errorf("clock_db cannot be empty")
	}
	if c.MessagesDB == "" {
		return fmt.Errorf("messages_db cannot be empty")
	}
	if c.ClockDB == c.MessagesDB {
		return fmt.Errorf("clock_db and messages_db must be different files")
	}
	if c.NodeID != "" {
		if err := validation.ValidateNodeID(c.NodeID); err != nil {
			return fmt.Errorf("node_id: %w", err)
		}
	}
	if c.MaxDrift < 0 {
		return fmt.Errorf("max_drift cannot be negative")
	}
	if c.PruneWidth < 0 {
		return fmt.Errorf("prune_width cannot be negative")
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync.max_attempts must be at least 1")
	}
	if c.Sync.MaxRepeats < 1 {
		return fmt.Errorf("sync.max_repeats must be at least 1")
	}
	if c.Sync.DefaultLookback < 0 {
		return fmt.Errorf("sync.default_lookback cannot be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps debug|info|warn|error to slog levels
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}

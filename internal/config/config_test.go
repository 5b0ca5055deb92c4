package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Изолированный viper без окружения и файлов
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "gophsync-clock.db", cfg.ClockDB)
	assert.Equal(t, "gophsync-messages.db", cfg.MessagesDB)
	assert.Empty(t, cfg.NodeID)
	assert.Equal(t, 5*time.Minute, cfg.MaxDrift)
	assert.Equal(t, 2, cfg.PruneWidth)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.Sync.MaxAttempts)
	assert.Equal(t, 10, cfg.Sync.MaxRepeats)
	assert.Equal(t, 5*time.Minute, cfg.Sync.DefaultLookback)
}

func TestNewViper_EnvOverrides(t *testing.T) {
	t.Setenv("GOPHSYNC_NODE_ID", "abc123")
	t.Setenv("GOPHSYNC_MAX_DRIFT", "90s")
	t.Setenv("GOPHSYNC_SYNC_MAX_ATTEMPTS", "7")
	t.Setenv("GOPHSYNC_LOG_LEVEL", "debug")

	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.NodeID)
	assert.Equal(t, 90*time.Second, cfg.MaxDrift)
	assert.Equal(t, 7, cfg.Sync.MaxAttempts)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestNewViper_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gophsync.yaml")
	content := `
clock_db: /var/lib/gophsync/clock.db
messages_db: /var/lib/gophsync/messages.db
prune_width: 3
sync:
  max_repeats: 4
  default_lookback: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	v, err := NewViper(path)
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/gophsync/clock.db", cfg.ClockDB)
	assert.Equal(t, "/var/lib/gophsync/messages.db", cfg.MessagesDB)
	assert.Equal(t, 3, cfg.PruneWidth)
	assert.Equal(t, 4, cfg.Sync.MaxRepeats)
	assert.Equal(t, time.Hour, cfg.Sync.DefaultLookback)
	// Незаданные в файле ключи берутся из значений по умолчанию
	assert.Equal(t, 100, cfg.Sync.MaxAttempts)
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ClockDB:    "clock.db",
			MessagesDB: "messages.db",
			LogLevel:   "info",
			MaxDrift:   time.Minute,
			PruneWidth: 2,
			Sync:       SyncConfig{MaxAttempts: 100, MaxRepeats: 10, DefaultLookback: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "valid node id", mutate: func(c *Config) { c.NodeID = "0123456789abcdef" }, wantErr: false},
		{name: "zero prune width keeps nothing but is valid", mutate: func(c *Config) { c.PruneWidth = 0 }, wantErr: false},
		{name: "empty clock db", mutate: func(c *Config) { c.ClockDB = "" }, wantErr: true},
		{name: "empty messages db", mutate: func(c *Config) { c.MessagesDB = "" }, wantErr: true},
		{name: "same file", mutate: func(c *Config) { c.MessagesDB = c.ClockDB }, wantErr: true},
		{name: "bad node id", mutate: func(c *Config) { c.NodeID = "not-hex" }, wantErr: true},
		{name: "negative drift", mutate: func(c *Config) { c.MaxDrift = -time.Second }, wantErr: true},
		{name: "negative prune width", mutate: func(c *Config) { c.PruneWidth = -1 }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.Sync.MaxAttempts = 0 }, wantErr: true},
		{name: "zero repeats", mutate: func(c *Config) { c.Sync.MaxRepeats = 0 }, wantErr: true},
		{name: "negative lookback", mutate: func(c *Config) { c.Sync.DefaultLookback = -time.Second }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

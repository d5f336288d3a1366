package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reachd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, WatcherAuto, cfg.Watcher)
	assert.Nil(t, cfg.IgnoreInterfaces)
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
host: 0.0.0.0
port: 9000
log_level: debug
debounce: 500ms
poll_interval: 2s
ignore_interfaces: [lo, utun]
watcher: poll
advertise: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Host:             "0.0.0.0",
		Port:             9000,
		LogLevel:         "debug",
		Debounce:         500 * time.Millisecond,
		PollInterval:     2 * time.Second,
		IgnoreInterfaces: []string{"lo", "utun"},
		Watcher:          WatcherPoll,
		Advertise:        true,
	}, cfg)
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "port: 9001\n"))
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultDebounce, cfg.Debounce)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "debounce: soon\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Millisecond }},
		{"zero debounce", func(c *Config) { c.Debounce = 0 }},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"unknown watcher", func(c *Config) { c.Watcher = "inotify" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

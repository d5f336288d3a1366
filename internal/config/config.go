package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 60250
	DefaultLogLevel     = "info"
	DefaultDebounce     = 250 * time.Millisecond
	DefaultPollInterval = 5 * time.Second
	DefaultWatcher      = WatcherAuto
)

const (
	// WatcherAuto uses the platform's event source (netlink, route socket)
	// and falls back to polling where there is none.
	WatcherAuto = "auto"
	WatcherPoll = "poll"
)

var logLevels = map[string]struct{}{
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Config holds the daemon settings. It is read from an optional YAML file
// and then overridden by command line flags.
type Config struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	LogLevel         string        `yaml:"log_level"`
	Debounce         time.Duration `yaml:"debounce"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	IgnoreInterfaces []string      `yaml:"ignore_interfaces"`
	Watcher          string        `yaml:"watcher"`
	Advertise        bool          `yaml:"advertise"`
}

func Default() Config {
	cfg := Config{}
	ApplyDefaults(&cfg)
	return cfg
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

// ApplyDefaults fills in default values when empty. A nil IgnoreInterfaces
// keeps the watcher's built-in list; an explicit empty list disables it.
func ApplyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Watcher == "" {
		cfg.Watcher = DefaultWatcher
	}
}

// Validate rejects settings the daemon cannot run with.
func Validate(cfg Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", cfg.Debounce)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.Watcher != WatcherAuto && cfg.Watcher != WatcherPoll {
		return fmt.Errorf("unknown watcher %q (want %s or %s)", cfg.Watcher, WatcherAuto, WatcherPoll)
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("Host: %s, Port: %d, LogLevel: %s, Debounce: %s, PollInterval: %s, Watcher: %s, Advertise: %t",
		c.Host, c.Port, c.LogLevel, c.Debounce, c.PollInterval, c.Watcher, c.Advertise)
}

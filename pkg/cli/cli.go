package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmdmdm-nz/reachd/internal/config"
	"github.com/dmdmdm-nz/reachd/pkg/version"
)

// ParseFlags parses command line arguments and returns the effective
// configuration. It exits on -version, -help and invalid settings.
func ParseFlags() *config.Config {
	cfg, showVersion, err := Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	return cfg
}

// Parse builds the configuration from args. A -config file is loaded first;
// flags given explicitly on the command line override it.
func Parse(args []string, output io.Writer) (*config.Config, bool, error) {
	def := config.Default()

	fs := flag.NewFlagSet("reachd", flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "", "Path to a YAML config file")
	port := fs.Int("port", def.Port, "Port to listen on")
	host := fs.String("host", def.Host, "Host to bind to")
	logLevel := fs.String("log-level", def.LogLevel, "Log level (trace, debug, info, warn, error)")
	debounce := fs.Duration("debounce", def.Debounce, "Quiet period before a reachability change is published")
	pollInterval := fs.Duration("poll-interval", def.PollInterval, "Interface rescan interval for the polling watcher")
	watcher := fs.String("watcher", def.Watcher, "Interface watcher (auto, poll)")
	ignore := fs.String("ignore-interfaces", "", "Comma separated interface name prefixes to ignore")
	advertise := fs.Bool("advertise", def.Advertise, "Advertise the API over mDNS")
	showVersion := fs.Bool("version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if *showVersion {
		return nil, true, nil
	}

	cfg := def
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, false, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "host":
			cfg.Host = *host
		case "log-level":
			cfg.LogLevel = *logLevel
		case "debounce":
			cfg.Debounce = *debounce
		case "poll-interval":
			cfg.PollInterval = *pollInterval
		case "watcher":
			cfg.Watcher = *watcher
		case "ignore-interfaces":
			cfg.IgnoreInterfaces = splitList(*ignore)
		case "advertise":
			cfg.Advertise = *advertise
		}
	})

	if err := config.Validate(cfg); err != nil {
		return nil, false, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, false, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

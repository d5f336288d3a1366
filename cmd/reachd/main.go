package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/reachd/internal/api"
	"github.com/dmdmdm-nz/reachd/internal/config"
	"github.com/dmdmdm-nz/reachd/internal/metrics"
	"github.com/dmdmdm-nz/reachd/internal/netmon"
	"github.com/dmdmdm-nz/reachd/internal/reachability"
	"github.com/dmdmdm-nz/reachd/internal/runtime"
	"github.com/dmdmdm-nz/reachd/internal/schedule"
	"github.com/dmdmdm-nz/reachd/pkg/cli"
)

func main() {
	// Parse command line flags
	cfg := cli.ParseFlags()

	// Configure logging
	setLogLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FullTimestamp:   true,
	})

	log.Infof("Config: %s", cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := schedule.Real()
	filter := newFilter(cfg)

	var watcher netmon.Watcher
	switch cfg.Watcher {
	case config.WatcherPoll:
		watcher = netmon.NewPollingWatcher(sched.Clock(), cfg.PollInterval, filter)
	default:
		watcher = netmon.NewWatcher(filter)
	}
	provider := netmon.NewProvider(watcher, filter)

	recorder := metrics.New()
	monitor := reachability.New(sched,
		reachability.WithDebounce(cfg.Debounce),
		reachability.WithRecorder(recorder))
	monitor.Configure(ctx, provider)

	// Registering up front surfaces a broken watcher before anything listens.
	obs, err := monitor.Observable()
	if err != nil {
		log.WithError(err).Fatal("Failed to start reachability monitoring")
	}

	apiSvc := api.NewService(cfg.Host, cfg.Port)
	apiSvc.AttachReachability(obs)
	apiSvc.AttachMetrics(recorder.Handler())

	super := runtime.NewSupervisor()
	super.Add("reachability", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}, monitor.Close)
	super.Add("api", apiSvc.Start, apiSvc.Close)
	if cfg.Advertise {
		adv := api.NewAdvertiser(cfg.Port)
		super.Add("mdns", adv.Start, adv.Close)
	}

	if err := super.Start(ctx); err != nil {
		log.WithError(err).Error("Supervisor start failed")
		os.Exit(1)
	}
	if err := super.Wait(ctx); err != nil {
		log.WithError(err).Error("Supervisor wait failed")
		os.Exit(1)
	}
}

func newFilter(cfg *config.Config) netmon.Filter {
	if cfg.IgnoreInterfaces == nil {
		return netmon.DefaultFilter()
	}
	return netmon.Filter{IgnorePrefixes: cfg.IgnoreInterfaces}
}

func setLogLevel(level string) {
	switch level {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

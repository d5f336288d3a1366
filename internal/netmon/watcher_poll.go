package netmon

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

const DefaultPollInterval = 5 * time.Second

type pollingWatcher struct {
	clock    clock.Clock
	interval time.Duration
	list     func() ([]Interface, error)
}

// NewPollingWatcher creates a watcher that rescans the host's interfaces
// every interval. It works everywhere but reacts with up to one interval of
// delay.
func NewPollingWatcher(c clock.Clock, interval time.Duration, f Filter) Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &pollingWatcher{
		clock:    c,
		interval: interval,
		list:     func() ([]Interface, error) { return listEligible(f) },
	}
}

func (w *pollingWatcher) Start(ctx context.Context, callback EventHandler) error {
	t := newTracker(callback)

	// Initial interface check
	current, err := w.list()
	if err != nil {
		return fmt.Errorf("listing interfaces: %w", err)
	}
	t.reconcile(current)
	log.WithFields(log.Fields{
		"interfaces": len(current),
		"interval":   w.interval,
	}).Debug("Polling watcher initialized")

	ticker := w.clock.Ticker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current, err := w.list()
				if err != nil {
					log.WithError(err).Error("Error getting network interfaces")
					continue
				}
				t.reconcile(current)
			}
		}
	}()
	return nil
}

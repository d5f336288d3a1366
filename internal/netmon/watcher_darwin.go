//go:build darwin

package netmon

import (
	"context"
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/route"
	"golang.org/x/sys/unix"
)

type darwinWatcher struct {
	filter Filter
}

// NewWatcher creates a macOS-specific watcher using AF_ROUTE sockets.
func NewWatcher(f Filter) Watcher {
	return &darwinWatcher{filter: f}
}

func (w *darwinWatcher) Start(ctx context.Context, callback EventHandler) error {
	fd, err := unix.Socket(unix.AF_ROUTE, unix.SOCK_RAW, unix.AF_UNSPEC)
	if err != nil {
		return fmt.Errorf("opening route socket: %w", err)
	}

	t := newTracker(callback)

	current, err := listEligible(w.filter)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("listing interfaces: %w", err)
	}
	t.reconcile(current)
	log.WithField("interfaces", len(current)).Debug("Darwin watcher initialized")

	// Close socket when context is cancelled
	go func() {
		<-ctx.Done()
		unix.Close(fd)
	}()

	go w.readLoop(ctx, fd, t)
	return nil
}

func (w *darwinWatcher) readLoop(ctx context.Context, fd int, t *tracker) {
	buf := make([]byte, 4096)

	for {
		n, err := unix.Read(fd, buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.WithError(err).Warn("Error reading from route socket")
				continue
			}
		}

		msgs, err := route.ParseRIB(route.RIBTypeRoute, buf[:n])
		if err != nil {
			log.WithError(err).Trace("Skipping unparsable routing message")
			continue
		}

		for _, msg := range msgs {
			switch m := msg.(type) {
			case *route.InterfaceMessage:
				log.WithFields(log.Fields{
					"ifIndex": m.Index,
					"flags":   m.Flags,
				}).Trace("Received interface info")
				// IFF_UP is 0x1 in BSD
				if m.Flags&0x1 == 0 {
					t.removeIndex(m.Index)
					continue
				}
				w.evaluate(t, m.Index)
			case *route.InterfaceAddrMessage:
				log.WithField("ifIndex", m.Index).Trace("Received interface address change")
				w.evaluate(t, m.Index)
			}
		}
	}
}

func (w *darwinWatcher) evaluate(t *tracker, index int) {
	if index == 0 {
		return
	}

	iface, err := net.InterfaceByIndex(index)
	if err != nil {
		// Interface may have been removed
		t.removeIndex(index)
		return
	}

	desc, ok := describe(*iface, w.filter)
	t.observe(desc, ok)
}

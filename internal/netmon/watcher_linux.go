//go:build linux

package netmon

import (
	"context"
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

type linuxWatcher struct {
	filter Filter
}

// NewWatcher creates a Linux-specific watcher using netlink.
func NewWatcher(f Filter) Watcher {
	return &linuxWatcher{filter: f}
}

func (w *linuxWatcher) Start(ctx context.Context, callback EventHandler) error {
	linkCh := make(chan netlink.LinkUpdate)
	linkDone := make(chan struct{})

	addrCh := make(chan netlink.AddrUpdate)
	addrDone := make(chan struct{})

	if err := netlink.LinkSubscribe(linkCh, linkDone); err != nil {
		return fmt.Errorf("netlink link subscribe: %w", err)
	}

	if err := netlink.AddrSubscribe(addrCh, addrDone); err != nil {
		close(linkDone)
		return fmt.Errorf("netlink addr subscribe: %w", err)
	}

	t := newTracker(callback)

	// Subscriptions are live, so nothing that happens from here on is missed.
	current, err := listEligible(w.filter)
	if err != nil {
		close(linkDone)
		close(addrDone)
		return fmt.Errorf("listing interfaces: %w", err)
	}
	t.reconcile(current)
	log.WithField("interfaces", len(current)).Debug("Linux watcher initialized")

	go func() {
		defer close(linkDone)
		defer close(addrDone)

		for {
			select {
			case <-ctx.Done():
				return

			case update, ok := <-linkCh:
				if !ok {
					log.Warn("Netlink link subscription closed")
					return
				}
				w.handleLinkUpdate(t, update)

			case update, ok := <-addrCh:
				if !ok {
					log.Warn("Netlink address subscription closed")
					return
				}
				w.evaluate(t, update.LinkIndex, "")
			}
		}
	}()

	return nil
}

func (w *linuxWatcher) handleLinkUpdate(t *tracker, update netlink.LinkUpdate) {
	attrs := update.Link.Attrs()

	log.WithFields(log.Fields{
		"interface": attrs.Name,
		"kind":      update.Link.Type(),
		"flags":     attrs.Flags,
	}).Trace("Received link update")

	if attrs.Flags&net.FlagUp == 0 {
		t.remove(attrs.Name)
		return
	}
	w.evaluate(t, attrs.Index, update.Link.Type())
}

func (w *linuxWatcher) evaluate(t *tracker, index int, kind string) {
	iface, err := net.InterfaceByIndex(index)
	if err != nil {
		log.WithError(err).WithField("index", index).Trace("Failed to get interface by index")
		t.removeIndex(index)
		return
	}

	if kind == "" {
		kind = linkKind(index)
	}
	desc := Interface{
		Name:      iface.Name,
		Index:     iface.Index,
		Transport: classify(iface.Name, kind, isWireless(iface.Name)),
	}

	addrs, err := iface.Addrs()
	if err != nil {
		log.WithError(err).WithField("interface", iface.Name).Trace("Failed to get interface addresses")
		t.observe(desc, false)
		return
	}
	t.observe(desc, eligible(*iface, addrs, w.filter))
}

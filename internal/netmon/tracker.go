package netmon

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// tracker remembers which interfaces have been reported as eligible and turns
// observations into Added, Changed and Removed events.
type tracker struct {
	mu       sync.Mutex
	tracked  map[string]Interface
	callback EventHandler
}

func newTracker(callback EventHandler) *tracker {
	return &tracker{
		tracked:  make(map[string]Interface),
		callback: callback,
	}
}

// observe records the current view of one interface.
func (t *tracker) observe(iface Interface, isEligible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, isTracked := t.tracked[iface.Name]
	switch {
	case isEligible && !isTracked:
		t.tracked[iface.Name] = iface
		log.WithFields(log.Fields{
			"interface": iface.Name,
			"transport": iface.Transport,
		}).Debug("Interface became usable")
		t.callback(InterfaceEvent{Type: InterfaceAdded, Interface: iface})
	case isEligible && prev != iface:
		t.tracked[iface.Name] = iface
		log.WithField("interface", iface.Name).Debug("Interface changed")
		t.callback(InterfaceEvent{Type: InterfaceChanged, Interface: iface})
	case !isEligible && isTracked:
		delete(t.tracked, iface.Name)
		log.WithField("interface", iface.Name).Debug("Interface no longer usable")
		t.callback(InterfaceEvent{Type: InterfaceRemoved, Interface: prev})
	}
}

// remove drops an interface by name, e.g. after a link-down notification.
func (t *tracker) remove(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.tracked[name]; ok {
		delete(t.tracked, name)
		log.WithField("interface", name).Debug("Interface removed or down")
		t.callback(InterfaceEvent{Type: InterfaceRemoved, Interface: prev})
	}
}

// removeIndex drops whichever tracked interface had the given index.
func (t *tracker) removeIndex(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for name, prev := range t.tracked {
		if prev.Index == index {
			delete(t.tracked, name)
			log.WithField("interface", name).Debug("Interface removed")
			t.callback(InterfaceEvent{Type: InterfaceRemoved, Interface: prev})
			return
		}
	}
}

// reconcile replaces the tracked set with current, which must contain only
// eligible interfaces.
func (t *tracker) reconcile(current []Interface) {
	seen := make(map[string]struct{}, len(current))
	for _, iface := range current {
		seen[iface.Name] = struct{}{}
		t.observe(iface, true)
	}

	t.mu.Lock()
	var gone []string
	for name := range t.tracked {
		if _, ok := seen[name]; !ok {
			gone = append(gone, name)
		}
	}
	t.mu.Unlock()

	for _, name := range gone {
		t.remove(name)
	}
}

package netmon

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/reachd/internal/reachability"
)

var ErrAlreadyRegistered = errors.New("default network callback already registered")

// Provider implements reachability.ConnectivityProvider on top of a Watcher.
// It keeps the set of usable interfaces, elects one of them as the default
// network and reports default-network changes to the registered callback.
type Provider struct {
	filter  Filter
	watcher Watcher
	list    func() ([]Interface, error)

	mu         sync.Mutex
	registered bool
	callback   reachability.NetworkCallback
	interfaces map[string]Interface
	current    Interface
	hasCurrent bool
}

var _ reachability.ConnectivityProvider = (*Provider)(nil)

func NewProvider(w Watcher, f Filter) *Provider {
	return &Provider{
		filter:     f,
		watcher:    w,
		list:       func() ([]Interface, error) { return listEligible(f) },
		interfaces: make(map[string]Interface),
	}
}

// HasActiveNetwork scans the host right now.
func (p *Provider) HasActiveNetwork() bool {
	ifaces, err := p.list()
	if err != nil {
		log.WithError(err).Error("Error getting network interfaces")
		return false
	}
	for _, iface := range ifaces {
		if iface.Transport != reachability.TransportVPN {
			return true
		}
	}
	return false
}

func (p *Provider) RegisterDefaultNetworkCallback(ctx context.Context, cb reachability.NetworkCallback) error {
	if cb == nil {
		return fmt.Errorf("nil network callback")
	}

	p.mu.Lock()
	if p.registered {
		p.mu.Unlock()
		return ErrAlreadyRegistered
	}
	p.registered = true
	p.callback = cb
	p.mu.Unlock()

	log.Info("Starting network interface monitoring")
	if err := p.watcher.Start(ctx, p.handleInterfaceEvent); err != nil {
		p.mu.Lock()
		p.registered = false
		p.callback = nil
		p.mu.Unlock()
		return fmt.Errorf("starting interface watcher: %w", err)
	}

	go func() {
		<-ctx.Done()
		log.Info("Stopping network interface monitoring")
	}()
	return nil
}

func (p *Provider) handleInterfaceEvent(ev InterfaceEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.callback == nil {
		return
	}

	log.WithFields(log.Fields{
		"type":      ev.Type,
		"interface": ev.Interface.Name,
		"transport": ev.Interface.Transport,
	}).Debug("Interface event")

	switch ev.Type {
	case InterfaceAdded, InterfaceChanged:
		p.interfaces[ev.Interface.Name] = ev.Interface
	case InterfaceRemoved:
		delete(p.interfaces, ev.Interface.Name)
	}

	next, ok := p.pickDefaultLocked()
	switch {
	case ok && (!p.hasCurrent || next.Name != p.current.Name || next.Index != p.current.Index):
		p.current, p.hasCurrent = next, true
		log.WithFields(log.Fields{
			"interface": next.Name,
			"transport": next.Transport,
		}).Info("Default network changed")
		p.callback.OnAvailable(toNetwork(next))
		p.callback.OnCapabilitiesChanged(toNetwork(next), toCapabilities(next))
	case ok && next.Transport != p.current.Transport:
		p.current = next
		p.callback.OnCapabilitiesChanged(toNetwork(next), toCapabilities(next))
	case !ok && p.hasCurrent:
		lost := p.current
		p.current, p.hasCurrent = Interface{}, false
		log.WithField("interface", lost.Name).Info("Default network lost")
		p.callback.OnLost(toNetwork(lost))
	}
}

var transportRank = map[reachability.Transport]int{
	reachability.TransportEthernet: 0,
	reachability.TransportWiFi:     1,
	reachability.TransportCellular: 2,
	reachability.TransportVPN:      3,
}

// pickDefaultLocked prefers wired over wireless over cellular over tunnels,
// then the lowest interface index.
func (p *Provider) pickDefaultLocked() (Interface, bool) {
	if len(p.interfaces) == 0 {
		return Interface{}, false
	}
	candidates := make([]Interface, 0, len(p.interfaces))
	for _, iface := range p.interfaces {
		candidates = append(candidates, iface)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := transportRank[candidates[i].Transport], transportRank[candidates[j].Transport]
		if ri != rj {
			return ri < rj
		}
		if candidates[i].Index != candidates[j].Index {
			return candidates[i].Index < candidates[j].Index
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates[0], true
}

func toNetwork(iface Interface) reachability.Network {
	return reachability.Network{Name: iface.Name, Index: iface.Index}
}

func toCapabilities(iface Interface) reachability.Capabilities {
	return reachability.Capabilities{Transports: []reachability.Transport{iface.Transport}}
}

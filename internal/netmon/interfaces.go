package netmon

import (
	"net"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/reachd/internal/reachability"
)

// DefaultIgnorePrefixes names host-internal interfaces that never lead off
// the machine.
var DefaultIgnorePrefixes = []string{"lo", "docker", "veth", "br-", "virbr"}

// Filter decides which interfaces are considered at all.
type Filter struct {
	IgnorePrefixes []string
}

func DefaultFilter() Filter {
	return Filter{IgnorePrefixes: append([]string(nil), DefaultIgnorePrefixes...)}
}

func (f Filter) Ignored(name string) bool {
	for _, prefix := range f.IgnorePrefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

var (
	vpnPrefixes      = []string{"tun", "utun", "tap", "wg", "ppp", "ipsec", "gpd"}
	wifiPrefixes     = []string{"wl", "ath", "ra"}
	cellularPrefixes = []string{"ww", "rmnet", "pdp_ip", "ccmni"}

	vpnKinds = map[string]struct{}{
		"wireguard": {},
		"tun":       {},
		"tuntap":    {},
		"ipip":      {},
		"gre":       {},
		"ip6tnl":    {},
		"sit":       {},
		"vti":       {},
	}
)

// classify guesses the transport from the interface name and, on Linux, the
// netlink link kind. Anything unrecognised is treated as wired.
func classify(name, kind string, wireless bool) reachability.Transport {
	if _, ok := vpnKinds[kind]; ok {
		return reachability.TransportVPN
	}
	switch {
	case hasAnyPrefix(name, vpnPrefixes):
		return reachability.TransportVPN
	case wireless, hasAnyPrefix(name, wifiPrefixes):
		return reachability.TransportWiFi
	case hasAnyPrefix(name, cellularPrefixes):
		return reachability.TransportCellular
	default:
		return reachability.TransportEthernet
	}
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// eligible reports whether iface is up, not loopback, not filtered out and
// holds at least one global unicast address.
func eligible(iface net.Interface, addrs []net.Addr, f Filter) bool {
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	if f.Ignored(iface.Name) {
		return false
	}
	return hasGlobalUnicast(addrs)
}

func hasGlobalUnicast(addrs []net.Addr) bool {
	for _, addr := range addrs {
		var ip net.IP
		switch a := addr.(type) {
		case *net.IPNet:
			ip = a.IP
		case *net.IPAddr:
			ip = a.IP
		default:
			continue
		}
		if ip.IsGlobalUnicast() {
			return true
		}
	}
	return false
}

// describe builds the Interface for iface and reports whether it is eligible.
func describe(iface net.Interface, f Filter) (Interface, bool) {
	out := Interface{
		Name:      iface.Name,
		Index:     iface.Index,
		Transport: classify(iface.Name, linkKind(iface.Index), isWireless(iface.Name)),
	}

	addrs, err := iface.Addrs()
	if err != nil {
		log.WithField("interface", iface.Name).WithError(err).Trace("Failed to get interface addresses")
		return out, false
	}
	return out, eligible(iface, addrs, f)
}

// listEligible scans the host and returns eligible interfaces ordered by index.
func listEligible(f Filter) ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		desc, ok := describe(iface, f)
		if !ok {
			log.WithField("interface", iface.Name).Trace("Skipping ineligible interface")
			continue
		}
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

package reachability

import (
	"context"
	"fmt"
	"strings"
)

type Transport string

const (
	TransportEthernet Transport = "ethernet"
	TransportWiFi     Transport = "wifi"
	TransportCellular Transport = "cellular"
	TransportVPN      Transport = "vpn"
)

// Network identifies the platform network a callback refers to.
type Network struct {
	Name  string
	Index int
}

func (n Network) String() string {
	return fmt.Sprintf("%s(%d)", n.Name, n.Index)
}

// Capabilities describes what a network can carry.
type Capabilities struct {
	Transports []Transport
}

func (c Capabilities) HasTransport(t Transport) bool {
	for _, have := range c.Transports {
		if have == t {
			return true
		}
	}
	return false
}

func (c Capabilities) String() string {
	names := make([]string, 0, len(c.Transports))
	for _, t := range c.Transports {
		names = append(names, string(t))
	}
	return "[" + strings.Join(names, ",") + "]"
}

// NetworkCallback receives default-network changes from the platform. Calls
// may arrive on any goroutine.
type NetworkCallback interface {
	OnAvailable(network Network)
	OnLost(network Network)
	OnCapabilitiesChanged(network Network, caps Capabilities)
}

// ConnectivityProvider is the platform's connectivity subsystem.
type ConnectivityProvider interface {
	// HasActiveNetwork reports whether a usable network exists right now.
	HasActiveNetwork() bool

	// RegisterDefaultNetworkCallback starts delivering default-network
	// changes to cb until ctx is cancelled. It must not block for the
	// lifetime of the registration.
	RegisterDefaultNetworkCallback(ctx context.Context, cb NetworkCallback) error
}

package reachability

type EventKind string

const (
	EventInitial             EventKind = "INITIAL"
	EventAvailable           EventKind = "AVAILABLE"
	EventLost                EventKind = "LOST"
	EventCapabilitiesChanged EventKind = "CAPABILITIES_CHANGED"
)

// Event is one raw callback from the platform, before debouncing.
type Event struct {
	Kind         EventKind
	Network      Network
	Capabilities Capabilities

	// Active is only meaningful for EventInitial and carries the provider's
	// HasActiveNetwork answer at registration time.
	Active bool
}

// Project maps a raw event onto the reachable/unreachable state.
func Project(ev Event) bool {
	switch ev.Kind {
	case EventInitial:
		return ev.Active
	case EventAvailable:
		return true
	case EventLost:
		return false
	case EventCapabilitiesChanged:
		return ev.Capabilities.HasTransport(TransportWiFi) ||
			ev.Capabilities.HasTransport(TransportCellular) ||
			ev.Capabilities.HasTransport(TransportEthernet)
	default:
		return false
	}
}

// callbackSink adapts NetworkCallback calls onto the monitor's event path.
type callbackSink struct {
	m *Monitor
}

func (s callbackSink) OnAvailable(network Network) {
	s.m.handleEvent(Event{Kind: EventAvailable, Network: network})
}

func (s callbackSink) OnLost(network Network) {
	s.m.handleEvent(Event{Kind: EventLost, Network: network})
}

func (s callbackSink) OnCapabilitiesChanged(network Network, caps Capabilities) {
	s.m.handleEvent(Event{Kind: EventCapabilitiesChanged, Network: network, Capabilities: caps})
}

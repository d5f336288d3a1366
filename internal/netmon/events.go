package netmon

import "github.com/dmdmdm-nz/reachd/internal/reachability"

type EventType string

const (
	InterfaceAdded   EventType = "INTERFACE_ADDED"
	InterfaceRemoved EventType = "INTERFACE_REMOVED"
	InterfaceChanged EventType = "INTERFACE_CHANGED"
)

// Interface is a network interface that can carry traffic off the host.
type Interface struct {
	Name      string
	Index     int
	Transport reachability.Transport
}

type InterfaceEvent struct {
	Type      EventType
	Interface Interface
}

type EventHandler func(event InterfaceEvent)

package api

import "time"

// ReachabilityStatus is the body of GET /reachability.
type ReachabilityStatus struct {
	Reachable bool `json:"reachable"`
	// Known is false until the first value has been committed.
	Known bool `json:"known"`
}

const (
	MessageHello = "hello"
	MessageState = "state"
)

// HelloMessage is the first message on a reachability WebSocket.
type HelloMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Protocol  string `json:"protocol"`
	Version   string `json:"version"`
}

// StateMessage carries one committed reachability value.
type StateMessage struct {
	Type      string    `json:"type"`
	Reachable bool      `json:"reachable"`
	Timestamp time.Time `json:"timestamp"`
}

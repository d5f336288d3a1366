package netmon

import "context"

// Watcher monitors network interfaces for changes using platform-specific
// event mechanisms (netlink on Linux, route sockets on macOS, polling
// elsewhere).
type Watcher interface {
	// Start subscribes to interface changes and returns once the
	// subscription is live, or with the error that prevented it.
	// The current interfaces are reported as Added before Start returns.
	// Later changes are delivered to callback from a background goroutine
	// until ctx is cancelled.
	Start(ctx context.Context, callback EventHandler) error
}

//go:build !linux && !darwin

package netmon

import "github.com/benbjohnson/clock"

// NewWatcher falls back to polling on platforms without an event source.
func NewWatcher(f Filter) Watcher {
	return NewPollingWatcher(clock.New(), DefaultPollInterval, f)
}

package reachability

import (
	"github.com/dmdmdm-nz/reachd/internal/runtime"
)

// Observable is the shared, replay-latest reachability stream. All calls to
// Monitor.Observable return the same instance.
type Observable struct {
	m *Monitor
}

// Subscribe returns a channel that first yields the latest committed value,
// if there is one, and then every committed transition. The returned func
// unsubscribes and closes the channel; it is safe to call more than once.
func (o *Observable) Subscribe() (<-chan bool, func()) {
	m := o.m
	sub := runtime.NewSubQueue[bool](subscriberBuffer)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		sub.Close()
		return sub.Chan(), func() {}
	}
	m.flushDueLocked(m.clock.Now())

	id := m.nextSubscriberID
	m.nextSubscriberID++
	m.subs[id] = sub
	if m.hasValue {
		sub.Prime(m.value)
	}
	m.recorder.Subscribers(len(m.subs))
	m.mu.Unlock()

	sub.SetPaused(false)

	unsub := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if q, ok := m.subs[id]; ok {
			delete(m.subs, id)
			q.Close()
			m.recorder.Subscribers(len(m.subs))
		}
	}
	return sub.Chan(), unsub
}

// Latest returns the last committed value without blocking. ok is false
// until the first commit.
func (o *Observable) Latest() (reachable bool, ok bool) {
	m := o.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushDueLocked(m.clock.Now())
	return m.value, m.hasValue
}

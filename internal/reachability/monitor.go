// Package reachability turns bursty platform connectivity callbacks into a
// single debounced "is the network reachable" value shared by any number of
// subscribers.
//
// Every raw callback is projected onto a bool and (re)arms a debounce timer.
// Only a value that survives a full window without being superseded is
// committed. The last committed value is cached and replayed to every new
// subscriber before live transitions.
package reachability

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/reachd/internal/runtime"
	"github.com/dmdmdm-nz/reachd/internal/schedule"
)

const (
	DefaultDebounce = 250 * time.Millisecond

	subscriberBuffer = 8
)

var ErrMonitorClosed = errors.New("reachability monitor closed")

type Option func(*Monitor)

// WithDebounce overrides the debounce window. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.debounce = d
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(m *Monitor) {
		if r != nil {
			m.recorder = r
		}
	}
}

type Monitor struct {
	clock    clock.Clock
	debounce time.Duration
	recorder Recorder

	// Registration is serialised separately from mu so a provider may call
	// back synchronously from inside RegisterDefaultNetworkCallback.
	regMu      sync.Mutex
	registered bool
	regErr     error
	observable *Observable

	mu       sync.Mutex
	provider ConnectivityProvider
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool

	// Debounce window.
	pending    bool
	candidate  bool
	deadline   time.Time
	timer      *clock.Timer
	generation uint64

	// Latest committed value.
	value    bool
	hasValue bool

	subs             map[int]*runtime.SubQueue[bool]
	nextSubscriberID int
}

var (
	defaultOnce    sync.Once
	defaultMonitor *Monitor
)

// Default returns the process-wide monitor, driven by the system clock.
func Default() *Monitor {
	defaultOnce.Do(func() {
		defaultMonitor = New(schedule.Real())
	})
	return defaultMonitor
}

func New(sched schedule.Provider, opts ...Option) *Monitor {
	m := &Monitor{
		clock:    sched.Clock(),
		debounce: DefaultDebounce,
		recorder: nopRecorder{},
		subs:     make(map[int]*runtime.SubQueue[bool]),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.observable = &Observable{m: m}
	return m
}

// Configure binds the connectivity provider. ctx bounds the lifetime of the
// platform registration made later by Observable. Only the first call with a
// non-nil provider takes effect.
func (m *Monitor) Configure(ctx context.Context, provider ConnectivityProvider) {
	if provider == nil {
		log.Warn("Ignoring reachability configuration without a provider")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.provider != nil {
		log.Debug("Reachability monitor already configured")
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	m.provider = provider
	m.ctx = ctx
	log.WithField("debounce", m.debounce).Debug("Reachability monitor configured")
}

// Observable returns the shared reachability stream. The first successful
// call registers the platform callback; later calls reuse it.
func (m *Monitor) Observable() (*Observable, error) {
	m.mu.Lock()
	provider, ctx, closed := m.provider, m.ctx, m.closed
	m.mu.Unlock()

	if provider == nil {
		return nil, errNotConfigured()
	}
	if closed {
		return nil, ErrMonitorClosed
	}

	m.regMu.Lock()
	defer m.regMu.Unlock()
	if !m.registered {
		m.registered = true
		m.regErr = m.register(ctx, provider)
	}
	if m.regErr != nil {
		return nil, m.regErr
	}
	return m.observable, nil
}

func (m *Monitor) register(parent context.Context, provider ConnectivityProvider) error {
	regCtx, cancel := context.WithCancel(parent)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	active := provider.HasActiveNetwork()
	log.WithField("active", active).Info("Registering default network callback")
	m.handleEvent(Event{Kind: EventInitial, Active: active})

	if err := provider.RegisterDefaultNetworkCallback(regCtx, callbackSink{m: m}); err != nil {
		cancel()
		m.mu.Lock()
		m.cancelPendingLocked()
		m.mu.Unlock()
		log.WithError(err).Error("Failed to register default network callback")
		return &RegistrationError{Err: err}
	}
	return nil
}

// Close stops the debounce timer, ends the platform registration and closes
// every subscriber channel.
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.cancelPendingLocked()
	if m.cancel != nil {
		m.cancel()
	}
	for id, q := range m.subs {
		q.Close()
		delete(m.subs, id)
	}
	m.recorder.Subscribers(0)
	return nil
}

func (m *Monitor) handleEvent(ev Event) {
	state := Project(ev)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.recorder.RawEvent(ev.Kind)

	now := m.clock.Now()
	m.flushDueLocked(now)

	if m.timer != nil {
		m.timer.Stop()
	}
	m.generation++
	gen := m.generation
	m.pending = true
	m.candidate = state
	m.deadline = now.Add(m.debounce)
	m.timer = m.clock.AfterFunc(m.debounce, func() { m.fire(gen) })

	log.WithFields(log.Fields{
		"event":     ev.Kind,
		"network":   ev.Network.Name,
		"candidate": state,
	}).Trace("Debounce window restarted")
}

func (m *Monitor) fire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || !m.pending || gen != m.generation {
		return
	}
	m.commitLocked()
}

// flushDueLocked commits a candidate whose deadline has already passed but
// whose timer callback has not run yet.
func (m *Monitor) flushDueLocked(now time.Time) {
	if m.pending && !now.Before(m.deadline) {
		m.commitLocked()
	}
}

func (m *Monitor) commitLocked() {
	m.pending = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	if m.hasValue && m.value == m.candidate {
		m.recorder.Suppressed()
		log.WithField("reachable", m.candidate).Trace("Debounced value unchanged")
		return
	}

	m.value = m.candidate
	m.hasValue = true
	m.recorder.Committed(m.value)
	log.WithFields(log.Fields{
		"reachable":   m.value,
		"subscribers": len(m.subs),
	}).Info("Reachability changed")

	for _, sub := range m.subs {
		sub.Enqueue(m.value)
	}
}

func (m *Monitor) cancelPendingLocked() {
	m.pending = false
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

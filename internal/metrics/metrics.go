// Package metrics exposes the reachability monitor's internals as Prometheus
// collectors on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmdmdm-nz/reachd/internal/reachability"
)

const namespace = "reachd"

// Metrics implements reachability.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	rawEvents   *prometheus.CounterVec
	commits     *prometheus.CounterVec
	suppressed  prometheus.Counter
	reachable   prometheus.Gauge
	subscribers prometheus.Gauge
}

var _ reachability.Recorder = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rawEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_events_total",
			Help:      "Connectivity callbacks received before debouncing.",
		}, []string{"kind"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Debounced reachability values published to subscribers.",
		}, []string{"state"}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_suppressed_total",
			Help:      "Debounced values dropped because they matched the cached value.",
		}),
		reachable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reachable",
			Help:      "1 if the last committed value was reachable, 0 otherwise.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Active reachability subscribers.",
		}),
	}

	m.registry.MustRegister(
		m.rawEvents,
		m.commits,
		m.suppressed,
		m.reachable,
		m.subscribers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RawEvent(kind reachability.EventKind) {
	m.rawEvents.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) Committed(reachable bool) {
	if reachable {
		m.commits.WithLabelValues("reachable").Inc()
		m.reachable.Set(1)
		return
	}
	m.commits.WithLabelValues("unreachable").Inc()
	m.reachable.Set(0)
}

func (m *Metrics) Suppressed() {
	m.suppressed.Inc()
}

func (m *Metrics) Subscribers(n int) {
	m.subscribers.Set(float64(n))
}

// Registry returns the registry holding every reachd collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

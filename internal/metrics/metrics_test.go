package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmdmdm-nz/reachd/internal/reachability"
	"github.com/dmdmdm-nz/reachd/internal/schedule"
)

// value returns the counter or gauge value of the series name{labels}.
func value(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue series
				}
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			return metric.GetGauge().GetValue()
		}
	}
	t.Fatalf("series %s%v not found", name, labels)
	return 0
}

func TestMetrics_Recorder(t *testing.T) {
	m := New()

	m.RawEvent(reachability.EventAvailable)
	m.RawEvent(reachability.EventAvailable)
	m.RawEvent(reachability.EventLost)
	m.Committed(true)
	m.Committed(false)
	m.Committed(true)
	m.Suppressed()
	m.Subscribers(3)

	assert.Equal(t, 2.0, value(t, m, "reachd_raw_events_total", map[string]string{"kind": "AVAILABLE"}))
	assert.Equal(t, 1.0, value(t, m, "reachd_raw_events_total", map[string]string{"kind": "LOST"}))
	assert.Equal(t, 2.0, value(t, m, "reachd_commits_total", map[string]string{"state": "reachable"}))
	assert.Equal(t, 1.0, value(t, m, "reachd_commits_total", map[string]string{"state": "unreachable"}))
	assert.Equal(t, 1.0, value(t, m, "reachd_commits_suppressed_total", nil))
	assert.Equal(t, 1.0, value(t, m, "reachd_reachable", nil))
	assert.Equal(t, 3.0, value(t, m, "reachd_subscribers", nil))
}

type staticProvider struct{}

func (staticProvider) HasActiveNetwork() bool { return true }

func (staticProvider) RegisterDefaultNetworkCallback(context.Context, reachability.NetworkCallback) error {
	return nil
}

func TestMetrics_WiredToMonitor(t *testing.T) {
	m := New()
	mock := clock.NewMock()
	mon := reachability.New(schedule.Virtual(mock), reachability.WithRecorder(m))
	defer mon.Close()
	mon.Configure(context.Background(), staticProvider{})

	obs, err := mon.Observable()
	require.NoError(t, err)
	_, unsub := obs.Subscribe()
	defer unsub()

	mock.Add(reachability.DefaultDebounce)
	v, ok := obs.Latest()
	require.True(t, ok)
	assert.True(t, v)

	assert.Equal(t, 1.0, value(t, m, "reachd_raw_events_total", map[string]string{"kind": "INITIAL"}))
	assert.Equal(t, 1.0, value(t, m, "reachd_commits_total", map[string]string{"state": "reachable"}))
	assert.Equal(t, 1.0, value(t, m, "reachd_subscribers", nil))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Committed(true)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "reachd_reachable 1")
	assert.Contains(t, string(body), `reachd_commits_total{state="reachable"} 1`)
}

// Package panelmetrics holds the Prometheus collectors for admin panels.
//
// A nil *Metrics is valid and records nothing, so tests and callers that
// do not care about metrics can pass nil.
package panelmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a settled fetch.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
	OutcomeStale     = "stale"
)

// Metrics groups the panel collectors.
type Metrics struct {
	dispatched *prometheus.CounterVec
	settled    *prometheus.CounterVec
	profiles   *prometheus.CounterVec
	panels     prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adminusers",
			Subsystem: "panel",
			Name:      "fetches_dispatched_total",
			Help:      "Remote profile fetches issued by panels, by operation.",
		}, []string{"op"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adminusers",
			Subsystem: "panel",
			Name:      "fetches_settled_total",
			Help:      "Remote profile fetches settled, by operation and outcome.",
		}, []string{"op", "outcome"}),
		profiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adminusers",
			Subsystem: "panel",
			Name:      "profiles_loaded_total",
			Help:      "Profiles received from committed fetches, by operation.",
		}, []string{"op"}),
		panels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adminusers",
			Subsystem: "panel",
			Name:      "open",
			Help:      "Panels currently open.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.dispatched, m.settled, m.profiles, m.panels)
	}
	return m
}

// Dispatched counts an issued fetch.
func (m *Metrics) Dispatched(op string) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(op).Inc()
}

// Settled counts a settled fetch and, for OutcomeOK, the profiles it loaded.
func (m *Metrics) Settled(op, outcome string, n int) {
	if m == nil {
		return
	}
	m.settled.WithLabelValues(op, outcome).Inc()
	if outcome == OutcomeOK && n > 0 {
		m.profiles.WithLabelValues(op).Add(float64(n))
	}
}

// PanelOpened and PanelClosed track open panels.
func (m *Metrics) PanelOpened() {
	if m == nil {
		return
	}
	m.panels.Inc()
}

func (m *Metrics) PanelClosed() {
	if m == nil {
		return
	}
	m.panels.Dec()
}

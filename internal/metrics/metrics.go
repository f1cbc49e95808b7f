package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded for organization context resolution.
const (
	OutcomeAllowed  = "allowed"
	OutcomeDenied   = "denied"
	OutcomeInvalid  = "invalid"
	OutcomeNoTenant = "no_tenant"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus collectors of the API.
type Metrics struct {
	ContextResolutions *prometheus.CounterVec
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration, which keeps tests independent of the global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ContextResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dana",
			Subsystem: "tenancy",
			Name:      "context_resolutions_total",
			Help:      "Organization context resolutions by outcome.",
		}, []string{"outcome"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dana",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Tenant list cache hits by resource.",
		}, []string{"resource"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dana",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Tenant list cache misses by resource.",
		}, []string{"resource"}),
	}

	if reg != nil {
		reg.MustRegister(m.ContextResolutions, m.CacheHits, m.CacheMisses)
	}
	return m
}

// Resolution records one organization context resolution. Safe on a nil receiver.
func (m *Metrics) Resolution(outcome string) {
	if m == nil {
		return
	}
	m.ContextResolutions.WithLabelValues(outcome).Inc()
}

// CacheHit records a cache hit. Safe on a nil receiver.
func (m *Metrics) CacheHit(resource string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(resource).Inc()
}

// CacheMiss records a cache miss. Safe on a nil receiver.
func (m *Metrics) CacheMiss(resource string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(resource).Inc()
}

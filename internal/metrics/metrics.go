package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the tracker's counters on a private registry so tests can
// build independent instances without colliding on the default registerer.
type Metrics struct {
	Registry        *prometheus.Registry
	CheckInsAdded   *prometheus.CounterVec
	PersistFailures prometheus.Counter
	MalformedLoads  prometheus.Counter
}

// New creates and registers the tracker counters.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		CheckInsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "captrack",
			Name:      "checkins_added_total",
			Help:      "Check-ins recorded, by classification.",
		}, []string{"type"}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "captrack",
			Name:      "persist_failures_total",
			Help:      "Check-in collection writes that failed and were kept in memory only.",
		}),
		MalformedLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "captrack",
			Name:      "malformed_loads_total",
			Help:      "Persisted collections that could not be parsed and were treated as empty.",
		}),
	}
	m.Registry.MustRegister(m.CheckInsAdded, m.PersistFailures, m.MalformedLoads)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveCheckIn counts a recorded check-in. Safe on a nil receiver.
func (m *Metrics) ObserveCheckIn(checkInType string) {
	if m == nil {
		return
	}
	m.CheckInsAdded.WithLabelValues(checkInType).Inc()
}

// ObservePersistFailure counts a failed collection write. Safe on a nil receiver.
func (m *Metrics) ObservePersistFailure() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

// ObserveMalformedLoad counts a collection that failed to parse. Safe on a nil receiver.
func (m *Metrics) ObserveMalformedLoad() {
	if m == nil {
		return
	}
	m.MalformedLoads.Inc()
}

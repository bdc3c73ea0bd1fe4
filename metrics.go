package auth

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for the gate and the orchestrator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	decisionsTotal     *prometheus.CounterVec
	loginsTotal        *prometheus.CounterVec
	registrationsTotal *prometheus.CounterVec
	opDuration         *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with registerer.
// A nil registerer uses prometheus.DefaultRegisterer.
func NewMetrics(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "authsvc"
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{}

	m.decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "decisions_total",
			Help:      "Authentication gate decisions by outcome",
		},
		[]string{"decision", "reason"},
	)

	m.loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by status",
		},
		[]string{"status"},
	)

	m.registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Registration attempts by status",
		},
		[]string{"status"},
	)

	m.opDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "operation_duration_seconds",
			Help:      "Login and registration duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)

	m.decisionsTotal = registerCollector(registerer, m.decisionsTotal)
	m.loginsTotal = registerCollector(registerer, m.loginsTotal)
	m.registrationsTotal = registerCollector(registerer, m.registrationsTotal)
	m.opDuration = registerCollector(registerer, m.opDuration)

	return m
}

// registerCollector registers c, or returns the collector already registered
// under the same descriptor so a second NewMetrics on one registry keeps
// exporting. Any other registration error panics.
func registerCollector[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	err := registerer.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}
	panic(err)
}

func (m *Metrics) observeDecision(d Decision) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(d.Kind.String(), d.Reason).Inc()
}

func (m *Metrics) observeLogin(status string, started time.Time) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(status).Inc()
	m.opDuration.WithLabelValues("login").Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeRegistration(status string, started time.Time) {
	if m == nil {
		return
	}
	m.registrationsTotal.WithLabelValues(status).Inc()
	m.opDuration.WithLabelValues("register").Observe(time.Since(started).Seconds())
}

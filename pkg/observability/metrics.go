package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	Invocations *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Unresolved  *prometheus.CounterVec
	Duration    *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// When reg is also a prometheus.Gatherer, Handler serves it.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tendril_tag_invocations_total",
				Help: "Total number of tag executions",
			},
			[]string{"tag"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tendril_tag_failures_total",
				Help: "Total number of tag executions that returned an error",
			},
			[]string{"tag"},
		),
		Unresolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tendril_tag_unresolved_total",
				Help: "Namespaced elements no tag library provided",
			},
			[]string{"tag"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tendril_tag_duration_seconds",
				Help:    "Duration of tag executions, body included",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"tag"},
		),
		gatherer: prometheus.DefaultGatherer,
	}

	for _, c := range []prometheus.Collector{m.Invocations, m.Failures, m.Unresolved, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTagEnd: func(_ context.Context, e *domain.TagEvent) {
			tag := e.Tag.String()
			m.Invocations.WithLabelValues(tag).Inc()
			m.Duration.WithLabelValues(tag).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.Failures.WithLabelValues(tag).Inc()
			}
		},
		OnUnresolved: func(_ context.Context, e *domain.TagEvent) {
			m.Unresolved.WithLabelValues(e.Tag.String()).Inc()
		},
	}
}

// Handler serves the registry the metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

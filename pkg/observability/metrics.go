package observability

import (
	"context"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the render collectors.
type Metrics struct {
	renders  *prometheus.CounterVec
	duration prometheus.Histogram
	actions  *prometheus.CounterVec
	copies   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediaflow_renders_total",
				Help: "Total number of renders by outcome",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mediaflow_render_duration_seconds",
				Help:    "Wall time of render calls",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediaflow_actions_total",
				Help: "Total number of dispatched actions by kind",
			},
			[]string{"action"},
		),
		copies: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mediaflow_copies_total",
				Help: "Total number of input copies created for reused references",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.renders, m.duration, m.actions, m.copies} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRenderEnd: func(_ context.Context, e *domain.RenderEvent) {
			status := "success"
			if e.Err != nil {
				status = "failure"
			}
			m.renders.WithLabelValues(status).Inc()
			m.duration.Observe(e.Duration.Seconds())
		},
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			m.actions.WithLabelValues(string(e.Action)).Inc()
		},
		OnCopy: func(context.Context, *domain.CopyEvent) {
			m.copies.Inc()
		},
	}
}

package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_transitions_total",
		Help: "Filter state transitions by event and outcome",
	}, []string{"event", "outcome"})

	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_recompute_duration_seconds",
		Help:    "Time to derive the unbrushed and brushed views",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_active_sessions",
		Help: "Open dashboard sessions",
	})
)

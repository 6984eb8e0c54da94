package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_events_total",
			Help: "Total number of events processed, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_rejections_total",
			Help: "Total number of rejected events, by reason",
		},
		[]string{"reason"},
	)

	EventApplyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_event_apply_duration_seconds",
			Help:    "Duration of a single event application",
			Buckets: []float64{.000001, .00001, .0001, .001, .01, .1, 1},
		},
	)

	AccountsKnown = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_accounts",
			Help: "Number of client accounts created so far",
		},
	)

	DeadLetterPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_dead_letter_publish_errors_total",
			Help: "Total number of dead-letter publish failures",
		},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KeyEventsTotal counts key events handed to the engine
	KeyEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "texpand_key_events_total",
			Help: "Total number of key events received by kind",
		},
		[]string{"kind"},
	)

	// KeyEventsDropped counts events ignored while a correction settles
	KeyEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "texpand_key_events_dropped_total",
			Help: "Total number of key events ignored during the settle window",
		},
	)

	// ReplacementsTotal counts executed corrections
	ReplacementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "texpand_replacements_total",
			Help: "Total number of trigger replacements by rule source",
		},
		[]string{"source"},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "texpand_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"},
	)

	// ExecuteDuration tracks how long replaying a correction takes
	ExecuteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "texpand_execute_duration_seconds",
			Help:    "Correction replay duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RulesLoaded reports the size of the active rule set
	RulesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "texpand_rules_loaded",
			Help: "Number of replacement rules in the active rule set",
		},
	)
)

// Error type constants
const (
	ErrorTypeExecute = "execute"
	ErrorTypeServer  = "metrics_server"
)

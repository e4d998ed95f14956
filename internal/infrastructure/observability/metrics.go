package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts pipeline requests by terminal outcome
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minutes_pipeline_requests_total",
		Help: "Total pipeline requests by outcome",
	}, []string{"outcome"})

	// StageOutcomes counts how each stage invocation resolved: the provider
	// that produced the value, "deterministic" for the rule-based tail, or
	// "exhausted" when the chain fell through to a default value
	StageOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minutes_stage_outcomes_total",
		Help: "Stage resolutions by stage and winning attempt",
	}, []string{"stage", "outcome"})

	// StageDuration tracks wall time per stage invocation
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "minutes_stage_duration_seconds",
		Help:    "Stage execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
)

// Handler exposes the prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

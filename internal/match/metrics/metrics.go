package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the match module.
// Tracks profile submissions, match runs by verdict, and evaluation latency.
type Metrics struct {
	ProfilesSubmitted  *prometheus.CounterVec
	ValidationFailures prometheus.Counter
	MatchRuns          *prometheus.CounterVec
	HardExclusions     prometheus.Counter
	ScoreDistribution  prometheus.Histogram
	MatchRunDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all match module metrics registered.
func New() *Metrics {
	return &Metrics{
		ProfilesSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "renalmatch_profiles_submitted_total",
			Help: "Total number of profile submissions accepted",
		}, []string{"kind"}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "renalmatch_validation_failures_total",
			Help: "Total number of profile submissions rejected by validation",
		}),
		MatchRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "renalmatch_match_runs_total",
			Help: "Total number of completed match runs by verdict",
		}, []string{"verdict"}),
		HardExclusions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "renalmatch_hard_exclusions_total",
			Help: "Total number of match runs hard-excluded by blood group",
		}),
		ScoreDistribution: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "renalmatch_score",
			Help:    "Distribution of computed compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		MatchRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "renalmatch_match_run_duration_seconds",
			Help:    "Duration of MatchNow operations including store round-trips",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementProfileSubmitted records an accepted donor or patient submission.
func (m *Metrics) IncrementProfileSubmitted(kind string) {
	m.ProfilesSubmitted.WithLabelValues(kind).Inc()
}

// IncrementValidationFailure records a rejected submission.
func (m *Metrics) IncrementValidationFailure() {
	m.ValidationFailures.Inc()
}

// ObserveMatchRun records a completed match run with its outcome.
func (m *Metrics) ObserveMatchRun(verdict string, score int, hardExcluded bool, start time.Time) {
	m.MatchRuns.WithLabelValues(verdict).Inc()
	m.ScoreDistribution.Observe(float64(score))
	if hardExcluded {
		m.HardExclusions.Inc()
	}
	m.MatchRunDuration.Observe(time.Since(start).Seconds())
}

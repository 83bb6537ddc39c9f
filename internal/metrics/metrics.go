// Package metrics provides centralized Prometheus metrics registry for the rating service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	GamesIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skill_tracker",
		Name:      "games_ingested_total",
		Help:      "Total number of game results ingested",
	})
	GamesRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skill_tracker",
		Name:      "games_rejected_total",
		Help:      "Total number of game records rejected during normalization",
	})
	RecomputesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skill_tracker",
		Name:      "recomputes_total",
		Help:      "Total number of full rating recomputes",
	})
	NewtonPassesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skill_tracker",
		Name:      "newton_passes_total",
		Help:      "Total number of Newton optimization passes across all recomputes",
	})
	InstabilityErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skill_tracker",
		Name:      "instability_errors_total",
		Help:      "Total number of diverged rating trajectories",
	})
	RatingQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skill_tracker",
		Name:      "rating_queries_total",
		Help:      "Total number of rating queries served",
	}, []string{"cache"})
)

// Gauge metrics
var (
	PlayersTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "skill_tracker",
		Name:      "players_tracked",
		Help:      "Number of players with at least one rated game",
	})
	GamesTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "skill_tracker",
		Name:      "games_tracked",
		Help:      "Number of games in the current rating base",
	})
	ConvergencePasses = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "skill_tracker",
		Name:      "convergence_passes",
		Help:      "Number of passes the last recompute took to converge",
	})
	TotalLogLikelihood = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "skill_tracker",
		Name:      "total_log_likelihood",
		Help:      "Total log-likelihood of the rating base after the last recompute",
	})
)

// Histogram metrics
var (
	NewtonPassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skill_tracker",
		Name:      "newton_pass_duration_seconds",
		Help:      "Duration of a single Newton pass over all players in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	RecomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skill_tracker",
		Name:      "recompute_duration_seconds",
		Help:      "Duration of full rating recomputes in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	IngestBatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skill_tracker",
		Name:      "ingest_batch_duration_seconds",
		Help:      "Duration of feed ingestion batches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(GamesIngestedTotal)
		registry.MustRegister(GamesRejectedTotal)
		registry.MustRegister(RecomputesTotal)
		registry.MustRegister(NewtonPassesTotal)
		registry.MustRegister(InstabilityErrorsTotal)
		registry.MustRegister(RatingQueriesTotal)

		// Register gauge metrics
		registry.MustRegister(PlayersTracked)
		registry.MustRegister(GamesTracked)
		registry.MustRegister(ConvergencePasses)
		registry.MustRegister(TotalLogLikelihood)

		// Register histogram metrics
		registry.MustRegister(NewtonPassDuration)
		registry.MustRegister(RecomputeDuration)
		registry.MustRegister(IngestBatchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordGameIngested records an ingested game result.
func RecordGameIngested() {
	GamesIngestedTotal.Inc()
}

// RecordGameRejected records a rejected game record.
func RecordGameRejected() {
	GamesRejectedTotal.Inc()
}

// RecordRecompute records a completed recompute and its duration.
func RecordRecompute(durationSeconds float64, passes int, logLikelihood float64) {
	RecomputesTotal.Inc()
	RecomputeDuration.Observe(durationSeconds)
	ConvergencePasses.Set(float64(passes))
	TotalLogLikelihood.Set(logLikelihood)
}

// RecordNewtonPass records a single Newton pass and its duration.
func RecordNewtonPass(durationSeconds float64) {
	NewtonPassesTotal.Inc()
	NewtonPassDuration.Observe(durationSeconds)
}

// RecordInstabilityError records a diverged trajectory.
func RecordInstabilityError() {
	InstabilityErrorsTotal.Inc()
}

// RecordRatingQuery records a served rating query with its cache disposition.
func RecordRatingQuery(cacheHit bool) {
	if cacheHit {
		RatingQueriesTotal.WithLabelValues("hit").Inc()
	} else {
		RatingQueriesTotal.WithLabelValues("miss").Inc()
	}
}

// UpdateBaseSize updates the tracked player and game gauges.
func UpdateBaseSize(players, games int) {
	PlayersTracked.Set(float64(players))
	GamesTracked.Set(float64(games))
}

// RecordIngestBatchDuration records feed batch duration.
func RecordIngestBatchDuration(durationSeconds float64) {
	IngestBatchDuration.Observe(durationSeconds)
}

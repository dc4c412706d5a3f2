package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion service

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_api_calls_total",
			Help: "Total number of NHL stats API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nhl_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Season store metrics
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_store_operations_total",
			Help: "Total number of season store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nhl_store_operation_duration_seconds",
			Help:    "Duration of season store operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"backend", "operation"},
	)

	// Batch metrics
	SeasonsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_batch_seasons_total",
			Help: "Total number of seasons processed by the batch orchestrator",
		},
		[]string{"status"},
	)

	SeasonDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nhl_batch_season_duration_seconds",
			Help:    "Duration of one season update in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	PlayersAbsentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nhl_players_absent_total",
			Help: "Total number of player lookups that returned no stats",
		},
	)

	RowsNormalized = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nhl_rows_normalized",
			Help: "Rows in the last normalized table per category",
		},
		[]string{"category"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nhl_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nhl_last_successful_sync_timestamp",
			Help: "Timestamp of last successful season update",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordStoreOperation records a season store operation
func RecordStoreOperation(backend, operation, status string, duration float64) {
	StoreOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration)
}

// RecordSeason records the outcome of one season update
func RecordSeason(status string, duration float64) {
	SeasonsProcessedTotal.WithLabelValues(status).Inc()
	SeasonDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordAbsent records players that had no stats
func RecordAbsent(n int) {
	PlayersAbsentTotal.Add(float64(n))
}

// UpdateNormalizedRows updates the normalized table sizes
func UpdateNormalizedRows(goalies, skaters int) {
	RowsNormalized.WithLabelValues("goalie").Set(float64(goalies))
	RowsNormalized.WithLabelValues("skater").Set(float64(skaters))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

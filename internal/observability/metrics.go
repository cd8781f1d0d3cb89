package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// enrichment batches.
type Metrics struct {
	RowsProcessed prometheus.Counter
	RowsSkipped   *prometheus.CounterVec // labels: reason={previously_geocoded,empty_address,existing_data}
	BatchRunning  prometheus.Gauge

	// Geocoding metrics.
	GeocodeRows        *prometheus.CounterVec   // labels: status={success,failed}
	GeocodeStrategies  *prometheus.CounterVec   // labels: method, outcome={success,failed}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method (winning strategy, or Failed)

	// Zone lookup metrics.
	ZoneLookups *prometheus.CounterVec // labels: outcome={found,not_found,error}

	// Alert/disaster enrichment metrics.
	AlertsMatched prometheus.Counter
	FEMARequests  *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all batch metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsProcessed,
		m.RowsSkipped,
		m.BatchRunning,
		m.GeocodeRows,
		m.GeocodeStrategies,
		m.GeocodeAPIDuration,
		m.ZoneLookups,
		m.AlertsMatched,
		m.FEMARequests,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "org_hazard_etl",
			Name:      "rows_processed_total",
			Help:      "Total organization rows processed.",
		}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "org_hazard_etl",
			Name:      "rows_skipped_total",
			Help:      "Rows short-circuited without network calls, by reason.",
		}, []string{"reason"}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "org_hazard_etl",
			Name:      "batch_running",
			Help:      "1 while a batch is active, 0 when finished.",
		}),
		GeocodeRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "org_hazard_etl",
			Name:      "geocode_rows_total",
			Help:      "Row-level geocoding outcomes.",
		}, []string{"status"}),
		GeocodeStrategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "org_hazard_etl",
			Name:      "geocode_strategies_total",
			Help:      "Geocoding outcomes by the method that resolved the row.",
		}, []string{"method", "outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "org_hazard_etl",
			Name:      "geocode_api_duration_seconds",
			Help:      "End-to-end address resolution duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"method"}),
		ZoneLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "org_hazard_etl",
			Name:      "zone_lookups_total",
			Help:      "NWS point lookup outcomes.",
		}, []string{"outcome"}),
		AlertsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "org_hazard_etl",
			Name:      "alerts_matched_total",
			Help:      "Alerts matched to organization zones.",
		}),
		FEMARequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "org_hazard_etl",
			Name:      "fema_requests_total",
			Help:      "FEMA per-state query outcomes.",
		}, []string{"outcome"}),
	}
}

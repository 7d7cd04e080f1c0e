package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Authorization metrics
	AuthzDecisions    *prometheus.CounterVec
	AuthzCacheLookups *prometheus.CounterVec
	AuthzCheckLatency *prometheus.HistogramVec

	// Batch loader metrics
	BatchLoads       *prometheus.CounterVec
	BatchLoadLatency *prometheus.HistogramVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		AuthzDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "authz_decisions_total",
			Help:      "Total number of permission decisions by permission and outcome",
		}, []string{"permission", "outcome"}),
		AuthzCacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "authz_cache_lookups_total",
			Help:      "Permission cache lookups by permission and result (hit, miss, bypass)",
		}, []string{"permission", "result"}),
		AuthzCheckLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "authz_check_duration_seconds",
			Help:      "Duration of permission checks including cache lookups",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		}, []string{"permission"}),
		BatchLoads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batch_loads_total",
			Help:      "Total number of batch loader runs by collection",
		}, []string{"collection"}),
		BatchLoadLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batch_load_duration_seconds",
			Help:      "Duration of batch loader runs",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"collection"}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}

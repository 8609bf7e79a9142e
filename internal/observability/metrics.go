package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges shared by the
// prediction service and the dashboard aggregation pass.
type Metrics struct {
	PredictionsTotal    *prometheus.CounterVec // labels: outcome={delayed,on_time,rejected,failed}
	AlignmentRejections prometheus.Counter
	ScoringDuration     prometheus.Histogram
	ModelLoaded         prometheus.Gauge
	SchemaLoaded        prometheus.Gauge

	// Audit trail metrics.
	AuditPublished prometheus.Counter
	AuditErrors    prometheus.Counter
	AuditDropped   prometheus.Counter
	AuditBatchSize prometheus.Histogram

	// Aggregation metrics.
	DatasetRows         prometheus.Counter
	ReportBuildDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PredictionsTotal,
		m.AlignmentRejections,
		m.ScoringDuration,
		m.ModelLoaded,
		m.SchemaLoaded,
		m.AuditPublished,
		m.AuditErrors,
		m.AuditDropped,
		m.AuditBatchSize,
		m.DatasetRows,
		m.ReportBuildDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		AlignmentRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "alignment_rejections_total",
			Help:      "Requests rejected during feature alignment.",
		}),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flight_delay",
			Name:      "scoring_duration_seconds",
			Help:      "Duration of align-and-score for one request.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flight_delay",
			Name:      "model_loaded",
			Help:      "1 when the model artifact loaded at startup, 0 otherwise.",
		}),
		SchemaLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flight_delay",
			Name:      "schema_loaded",
			Help:      "1 when the training column manifest loaded at startup, 0 otherwise.",
		}),
		AuditPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "audit_events_published_total",
			Help:      "Prediction audit events written to the audit topic.",
		}),
		AuditErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "audit_publish_errors_total",
			Help:      "Failed audit event publishes.",
		}),
		AuditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "audit_events_dropped_total",
			Help:      "Audit events dropped because the dispatch queue was full.",
		}),
		AuditBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flight_delay",
			Name:      "audit_batch_size",
			Help:      "Audit events per published batch.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		}),
		DatasetRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "dataset_rows_total",
			Help:      "Historical dataset rows read by the aggregation pass.",
		}),
		ReportBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flight_delay",
			Name:      "report_build_duration_seconds",
			Help:      "Duration of a full aggregation pass over the dataset.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Счетчики пайплайна для мониторинга
var (
	NEOProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neo_objects_processed_total",
			Help: "Total number of NEO records scored and stored",
		},
	)

	NEOHazardousTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neo_objects_hazardous_total",
			Help: "Total number of source-flagged hazardous NEO records",
		},
	)

	NEOHighRiskTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neo_objects_high_risk_total",
			Help: "Total number of NEO records scored into the high category",
		},
	)

	NEORecordErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neo_record_errors_total",
			Help: "Total number of record-level failures during ingestion",
		},
	)

	FeedFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neo_feed_failures_total",
			Help: "Total number of feed fetches degraded to an empty batch",
		},
	)

	AlertsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neo_alerts_created_total",
			Help: "Total number of alert records created",
		},
	)

	AlertsDedupedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neo_alerts_deduped_total",
			Help: "Total number of alerts suppressed by the dedup window",
		},
	)

	AlertErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neo_alert_errors_total",
			Help: "Total number of per-recipient alert failures",
		},
	)

	PipelineRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neo_pipeline_run_duration_seconds",
			Help:    "Duration of full pipeline runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pipeline"},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(NEOProcessedTotal)
	prometheus.MustRegister(NEOHazardousTotal)
	prometheus.MustRegister(NEOHighRiskTotal)
	prometheus.MustRegister(NEORecordErrorsTotal)
	prometheus.MustRegister(FeedFailuresTotal)
	prometheus.MustRegister(AlertsCreatedTotal)
	prometheus.MustRegister(AlertsDedupedTotal)
	prometheus.MustRegister(AlertErrorsTotal)
	prometheus.MustRegister(PipelineRunDuration)
}

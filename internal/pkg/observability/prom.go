package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "catrank"
)

var (
	CollectDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "collector", "run_duration_seconds"),
		Help:    "Duration of a full snapshot collection in seconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"result"})
	CollectCategories = promauto.NewGauge(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "collector", "categories"),
		Help: "Number of categories captured by the last collection",
	})
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "collector", "upstream_requests_total"),
		Help: "Requests made against the upstream ranking API",
	}, []string{"endpoint", "status"})
	IngestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "ingest", "consume_duration_seconds"),
		Help:    "Duration of snapshot ingestion in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"result"})
	IngestMessagingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "ingest", "messaging_latency_seconds"),
		Help:    "Time between publishing and consuming a snapshot in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	})
	IngestedObservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "ingest", "observations_total"),
		Help: "Observations persisted, by snapshot source",
	}, []string{"source"})
	AnalyticsComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "analytics", "compute_duration_seconds"),
		Help:    "Duration of a summary table computation in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{})
	WorkerRunDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "worker", "run_duration_seconds"),
		Help: "Duration of the last worker run in seconds",
	}, []string{"job"})
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync Metrics
var (
	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSyncCyclesTotal,
			Help: HelpTextSyncCyclesTotal,
		},
		[]string{LabelWorker, LabelStatus},
	)

	SyncCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameSyncCycleDuration,
			Help:    HelpTextSyncCycleDuration,
			Buckets: CycleDurationBuckets,
		},
		[]string{LabelWorker},
	)

	SyncLinksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSyncLinksProcessed,
			Help: HelpTextSyncLinksProcessed,
		},
		[]string{LabelWorker},
	)

	SyncLinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSyncLinkErrors,
			Help: HelpTextSyncLinkErrors,
		},
		[]string{LabelWorker},
	)

	ImportsReconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameImportsReconciled,
			Help: HelpTextImportsReconciled,
		},
		[]string{LabelWorker, LabelAction},
	)
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelHTTPStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)

package metrics

// ============================================================================
// Metric Names
// ============================================================================

// Sync metric names
const (
	MetricNameSyncCyclesTotal    = "sync_cycles_total"
	MetricNameSyncCycleDuration  = "sync_cycle_duration_seconds"
	MetricNameSyncLinksProcessed = "sync_links_processed_total"
	MetricNameSyncLinkErrors     = "sync_link_errors_total"
	MetricNameImportsReconciled  = "imports_reconciled_total"
)

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal   = "http_requests_total"
	MetricNameHTTPRequestDuration = "http_request_duration_seconds"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// Sync metric help text
const (
	HelpTextSyncCyclesTotal    = "Total number of sync worker cycles by outcome"
	HelpTextSyncCycleDuration  = "Sync cycle duration in seconds"
	HelpTextSyncLinksProcessed = "Total number of managed links processed"
	HelpTextSyncLinkErrors     = "Total number of per-link reconciliation failures"
	HelpTextImportsReconciled  = "Total number of imports added, updated or deleted"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal   = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration = "HTTP request latency in seconds"
)

// ============================================================================
// Metric Labels
// ============================================================================

const (
	LabelWorker     = "worker"
	LabelStatus     = "status"
	LabelAction     = "action"
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelHTTPStatus = "status"
)

// Action label values
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

var (
	CycleDurationBuckets = []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300}
	HTTPLatencyBuckets   = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
)

package linksync

// Defaults
const (
	DefaultBatchSize     = 20
	DefaultLinkCacheSize = 256
)

// Log messages for reconciliation
const (
	LogMsgReconcilingLink       = "Reconciling link"
	LogMsgLinkReconciled        = "Link reconciled"
	LogMsgLinkReconcileFailed   = "Link reconciliation failed"
	LogMsgDeletionDetectionSkip = "Skipping deletion detection, incremental fetch incomplete"
	LogMsgTokenRefreshed        = "Refreshed provider tokens"
	LogMsgTokenRefreshFailed    = "Token refresh failed"
)

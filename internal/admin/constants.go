package admin

// Log messages
const (
	LogMsgWorkerDisabled      = "Worker disabled by operator"
	LogMsgWorkerEnabled       = "Worker enabled by operator"
	LogMsgWorkerTriggered     = "Worker triggered by operator"
	LogMsgOverrideWriteFailed = "Failed to write worker override"
	LogMsgLinkLookupFailed    = "Failed to look up link"
)

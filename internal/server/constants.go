package server

// Log messages
const (
	LogMsgAuthFailed      = "Rejected request with invalid API key"
	LogMsgReadinessFailed = "Readiness check failed"
)

package config

import "time"

// Worker configuration defaults, overridable per kind via SYNC_<KIND>_* env vars
const (
	DefaultCheckInterval       = 1 * time.Minute
	DefaultFullSyncInterval    = 30 * time.Minute
	DefaultFullRefetchInterval = 24 * time.Hour
	DefaultBatchSize           = 20
)

package worker

import (
	"fmt"
	"time"
)

// Per-worker configuration defaults
const (
	DefaultCheckInterval       = 1 * time.Minute
	DefaultFullSyncInterval    = 30 * time.Minute
	DefaultFullRefetchInterval = 24 * time.Hour
	DefaultBatchSize           = 20
)

// Runtime state value marking a worker as disabled
const DisabledValue = "true"

// ============================================================================
// Log Messages - Sync Worker
// ============================================================================

const (
	LogMsgCycleStarting        = "Sync cycle starting"
	LogMsgCycleCompleted       = "Sync cycle completed"
	LogMsgCycleFailed          = "Sync cycle failed"
	LogMsgCycleSkipped         = "Sync cycle skipped"
	LogMsgStateReadFailed      = "Failed to read runtime state, skipping cycle"
	LogMsgScheduleClaimFailed  = "Failed to claim next run slot, skipping cycle"
	LogMsgLockAcquireFailed    = "Failed to acquire sync lock, skipping cycle"
	LogMsgLockReleaseFailed    = "Failed to release sync lock"
	LogMsgStoryProcessFailed   = "Story processing failed"
	LogMsgFullRefetchForced    = "Forcing full refetch"
	LogMsgLastFullSyncNotSaved = "Failed to record full sync completion"
)

// ============================================================================
// Log Messages - Runner
// ============================================================================

const (
	LogMsgWorkerStarted          = "Sync worker started"
	LogMsgWorkerStopped          = "Sync worker stopped"
	LogMsgRunnerShutdownComplete = "Worker runner shutdown complete"
	LogMsgRunnerShutdownTimeout  = "Worker runner shutdown timeout"
)

// ============================================================================
// Runtime state keys
// ============================================================================

// NextRunKey names the persisted next-scheduled-run timestamp for a worker.
func NextRunKey(name string) string {
	return fmt.Sprintf("%s.next_run_at", name)
}

// DisabledKey names the admin override flag for a worker.
func DisabledKey(name string) string {
	return fmt.Sprintf("worker.%s.disabled", name)
}

// LastFullSyncKey names the timestamp of the last completed full refetch.
func LastFullSyncKey(name string) string {
	return fmt.Sprintf("%s.last_full_sync_at", name)
}

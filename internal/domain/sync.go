package domain

import "time"

// RemoteItem is one item observed at a provider (a repository, a video, a deck).
// Properties is an opaque snapshot replaced wholesale on every observation.
type RemoteItem struct {
	RemoteID   string                 `json:"remote_id"`
	Properties map[string]interface{} `json:"properties"`
}

// SyncResult is the per-link outcome of one reconciliation pass.
// It is never persisted; it only feeds logs and metrics.
type SyncResult struct {
	LinkID    string
	ProfileID string
	Added     int
	Updated   int
	Deleted   int
	Err       error
}

// CycleStatus describes how a worker cycle ended. Skips are clean exits,
// not failures.
type CycleStatus string

const (
	CycleCompleted         CycleStatus = "completed"
	CycleSkippedDisabled   CycleStatus = "skipped_disabled"
	CycleSkippedNotDue     CycleStatus = "skipped_not_due"
	CycleSkippedLocked     CycleStatus = "skipped_locked"
	CycleSkippedStoreError CycleStatus = "skipped_store_error"
	CycleFailed            CycleStatus = "failed"
)

// Skipped reports whether the cycle ended on one of the early-exit paths.
func (s CycleStatus) Skipped() bool {
	switch s {
	case CycleSkippedDisabled, CycleSkippedNotDue, CycleSkippedLocked, CycleSkippedStoreError:
		return true
	}
	return false
}

// SyncMetadata summarizes a completed cycle for audit recording.
type SyncMetadata struct {
	WorkerName string    `json:"worker_name"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Links      int       `json:"links"`
	Added      int       `json:"added"`
	Updated    int       `json:"updated"`
	Deleted    int       `json:"deleted"`
	Failures   int       `json:"failures"`
}

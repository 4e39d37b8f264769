package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/storyweave/linksync/internal/audit"
	"github.com/storyweave/linksync/internal/domain"
	"github.com/storyweave/linksync/internal/locks"
	"github.com/storyweave/linksync/internal/logger"
	"github.com/storyweave/linksync/internal/metrics"
	"github.com/storyweave/linksync/internal/repository"
	"github.com/storyweave/linksync/internal/stories"
)

// Config holds per-worker scheduling parameters
type Config struct {
	Enabled bool

	// CheckInterval is how often the state machine is invoked.
	CheckInterval time.Duration

	// FullSyncInterval is the minimum spacing between cycles, enforced
	// through the persisted next_run_at slot.
	FullSyncInterval time.Duration

	// FullRefetchInterval bounds how long incremental cycles may run before
	// a full fetch is forced so deletion detection gets a complete set.
	FullRefetchInterval time.Duration

	// BatchSize caps links per cycle - the backpressure control against
	// third-party rate limits.
	BatchSize int
}

// DefaultConfig returns the standard worker configuration
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		CheckInterval:       DefaultCheckInterval,
		FullSyncInterval:    DefaultFullSyncInterval,
		FullRefetchInterval: DefaultFullRefetchInterval,
		BatchSize:           DefaultBatchSize,
	}
}

// Reconciler is the per-provider diff engine the worker drives.
type Reconciler interface {
	ReconcileBatch(ctx context.Context, kind string, batchSize int, forceFull bool, sink audit.Sink) ([]domain.SyncResult, error)
}

// SyncWorker runs the distributed sync cycle for one provider kind. Multiple
// replicas may run the same worker; the advisory lock serializes them, and
// the persisted schedule keeps cycles spaced across restarts.
type SyncWorker struct {
	name       string
	cfg        Config
	state      repository.RuntimeState
	reconciler Reconciler
	stories    stories.Processor
	sink       audit.Sink
	lockID     int64
	now        func() time.Time
}

// NewSyncWorker creates a worker for one provider kind
func NewSyncWorker(kind string, cfg Config, state repository.RuntimeState, reconciler Reconciler, processor stories.Processor, sink audit.Sink) (*SyncWorker, error) {
	lockID, err := locks.ForWorker(kind)
	if err != nil {
		return nil, err
	}
	if processor == nil {
		processor = stories.NopProcessor{}
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &SyncWorker{
		name:       kind,
		cfg:        cfg,
		state:      state,
		reconciler: reconciler,
		stories:    processor,
		sink:       sink,
		lockID:     lockID,
		now:        time.Now,
	}, nil
}

// Name returns the worker's provider kind
func (w *SyncWorker) Name() string {
	return w.name
}

// Config returns the worker's configuration
func (w *SyncWorker) Config() Config {
	return w.cfg
}

// Execute runs one pass of the cycle state machine. Skips are clean early
// exits, not failures; the returned error is non-nil only when reconciliation
// itself failed at the batch level. Nothing here may take down the process.
func (w *SyncWorker) Execute(ctx context.Context) (domain.CycleStatus, error) {
	log := logger.FromContext(ctx).With("worker", w.name)

	// CheckDisabled: admin override, settable out-of-band
	disabled, err := w.state.Get(ctx, DisabledKey(w.name))
	if err != nil && !errors.Is(err, domain.ErrStateNotFound) {
		log.Warn(LogMsgStateReadFailed, "error", err)
		return domain.CycleSkippedStoreError, nil
	}
	if disabled == DisabledValue {
		log.Debug(LogMsgCycleSkipped, "reason", "disabled")
		return domain.CycleSkippedDisabled, nil
	}

	// CheckSchedule: absence means never run - run now
	nextRun, err := w.state.GetTime(ctx, NextRunKey(w.name))
	if err != nil && !errors.Is(err, domain.ErrStateNotFound) {
		log.Warn(LogMsgStateReadFailed, "error", err)
		return domain.CycleSkippedStoreError, nil
	}
	if err == nil && nextRun.After(w.now()) {
		log.Debug(LogMsgCycleSkipped, "reason", "not_due", "next_run_at", nextRun)
		return domain.CycleSkippedNotDue, nil
	}

	// AcquireLock: non-blocking; contention means another replica is inside
	// this cycle. Transient lock errors never crash the scheduler.
	acquired, err := w.state.TryLock(ctx, w.lockID)
	if err != nil {
		log.Warn(LogMsgLockAcquireFailed, "error", err)
		return domain.CycleSkippedStoreError, nil
	}
	if !acquired {
		log.Debug(LogMsgCycleSkipped, "reason", "locked")
		return domain.CycleSkippedLocked, nil
	}
	defer func() {
		if err := w.state.ReleaseLock(context.WithoutCancel(ctx), w.lockID); err != nil {
			log.Warn(LogMsgLockReleaseFailed, "error", err)
		}
	}()

	// ClaimNextSlot: written before any work so a crash mid-cycle cannot
	// cause another replica to re-trigger before the interval elapses. The
	// accepted trade-off is a missed run after a crash, never a double run.
	startedAt := w.now()
	if err := w.state.SetTime(ctx, NextRunKey(w.name), startedAt.Add(w.cfg.FullSyncInterval)); err != nil {
		log.Warn(LogMsgScheduleClaimFailed, "error", err)
		return domain.CycleSkippedStoreError, nil
	}

	log.Info(LogMsgCycleStarting, "batch_size", w.cfg.BatchSize)

	forceFull := w.shouldForceFull(ctx, log)

	results, err := w.reconciler.ReconcileBatch(ctx, w.name, w.cfg.BatchSize, forceFull, w.sink)
	meta := w.recordResults(results, startedAt)
	if err != nil {
		log.Error(LogMsgCycleFailed, "error", err)
		w.sink.Record(ctx, audit.Event{
			Type:       audit.EventTypeCycleFailed,
			WorkerName: w.name,
			Detail:     map[string]interface{}{"error": err.Error()},
			At:         w.now().UTC(),
		})
		return domain.CycleFailed, err
	}

	if forceFull {
		if err := w.state.SetTime(ctx, LastFullSyncKey(w.name), startedAt); err != nil {
			log.Warn(LogMsgLastFullSyncNotSaved, "error", err)
		}
	}

	// ProcessStories: independent downstream stage; its failure never
	// unwinds the reconciliation that preceded it
	if err := w.stories.ProcessStories(ctx); err != nil {
		log.Warn(LogMsgStoryProcessFailed, "error", err)
	}

	log.Info(LogMsgCycleCompleted,
		"links", meta.Links,
		"added", meta.Added,
		"updated", meta.Updated,
		"deleted", meta.Deleted,
		"failures", meta.Failures,
	)
	w.sink.Record(ctx, audit.Event{
		Type:       audit.EventTypeCycleCompleted,
		WorkerName: w.name,
		Detail: map[string]interface{}{
			"links":    meta.Links,
			"added":    meta.Added,
			"updated":  meta.Updated,
			"deleted":  meta.Deleted,
			"failures": meta.Failures,
		},
		At: w.now().UTC(),
	})

	return domain.CycleCompleted, nil
}

// shouldForceFull reports whether the periodic full refetch is overdue
func (w *SyncWorker) shouldForceFull(ctx context.Context, log *slog.Logger) bool {
	lastFull, err := w.state.GetTime(ctx, LastFullSyncKey(w.name))
	if errors.Is(err, domain.ErrStateNotFound) {
		return true
	}
	if err != nil {
		// Prefer an incremental pass over hammering providers when state
		// reads are flaky.
		return false
	}
	if w.now().Sub(lastFull) >= w.cfg.FullRefetchInterval {
		log.Info(LogMsgFullRefetchForced, "last_full_sync_at", lastFull)
		return true
	}
	return false
}

// recordResults aggregates per-link outcomes into metrics and a cycle summary
func (w *SyncWorker) recordResults(results []domain.SyncResult, startedAt time.Time) domain.SyncMetadata {
	meta := domain.SyncMetadata{
		WorkerName: w.name,
		StartedAt:  startedAt,
		FinishedAt: w.now(),
		Links:      len(results),
	}
	for _, res := range results {
		metrics.SyncLinksProcessed.WithLabelValues(w.name).Inc()
		if res.Err != nil {
			meta.Failures++
			metrics.SyncLinkErrors.WithLabelValues(w.name).Inc()
			continue
		}
		meta.Added += res.Added
		meta.Updated += res.Updated
		meta.Deleted += res.Deleted
		metrics.ImportsReconciled.WithLabelValues(w.name, metrics.ActionAdded).Add(float64(res.Added))
		metrics.ImportsReconciled.WithLabelValues(w.name, metrics.ActionUpdated).Add(float64(res.Updated))
		metrics.ImportsReconciled.WithLabelValues(w.name, metrics.ActionDeleted).Add(float64(res.Deleted))
	}
	return meta
}

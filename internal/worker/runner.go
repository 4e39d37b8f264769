package worker

import (
	"context"
	"sync"
	"time"

	"github.com/storyweave/linksync/internal/logger"
	"github.com/storyweave/linksync/internal/metrics"
)

// Runner owns the periodic invocation of each sync worker. Every worker gets
// its own ticker goroutine; workers share no state with each other.
type Runner struct {
	workers []*SyncWorker

	mu        sync.Mutex
	cancel    context.CancelFunc
	shutdown  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewRunner creates a runner for the given workers
func NewRunner(workers ...*SyncWorker) *Runner {
	return &Runner{
		workers:  workers,
		shutdown: make(chan struct{}),
	}
}

// Start launches one loop per enabled worker
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	for _, w := range r.workers {
		if !w.Config().Enabled {
			continue
		}
		r.wg.Add(1)
		go r.runWorker(ctx, w)
	}
}

// runWorker invokes the worker's state machine every CheckInterval. The
// first invocation happens immediately so a fresh deployment does not wait a
// full interval before its bootstrap sync.
func (r *Runner) runWorker(ctx context.Context, w *SyncWorker) {
	defer r.wg.Done()

	log := logger.FromContext(ctx).With("worker", w.Name())
	log.Info(LogMsgWorkerStarted, "check_interval", w.Config().CheckInterval)

	ticker := time.NewTicker(w.Config().CheckInterval)
	defer ticker.Stop()

	r.executeOnce(ctx, w)
	for {
		select {
		case <-ticker.C:
			r.executeOnce(ctx, w)
		case <-r.shutdown:
			log.Info(LogMsgWorkerStopped)
			return
		case <-ctx.Done():
			log.Info(LogMsgWorkerStopped)
			return
		}
	}
}

// executeOnce runs a single cycle with a fresh sync ID for log correlation
func (r *Runner) executeOnce(ctx context.Context, w *SyncWorker) {
	cycleCtx := logger.WithSyncID(ctx, logger.GenerateSyncID())

	start := time.Now()
	status, err := w.Execute(cycleCtx)
	duration := time.Since(start)

	metrics.SyncCyclesTotal.WithLabelValues(w.Name(), string(status)).Inc()
	if !status.Skipped() {
		metrics.SyncCycleDuration.WithLabelValues(w.Name()).Observe(duration.Seconds())
	}
	if err != nil {
		logger.FromContext(cycleCtx).Error(LogMsgCycleFailed, "worker", w.Name(), "error", err)
	}
}

// Shutdown stops all worker loops, cancels in-flight cycles and waits for
// them to finish or for ctx to expire
func (r *Runner) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)

	r.closeOnce.Do(func() { close(r.shutdown) })

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgRunnerShutdownComplete)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgRunnerShutdownTimeout)
		return ctx.Err()
	}
}

// Package admin exposes the operator override surface: per-worker disable
// flags, schedule inspection and manual triggering, all backed by the shared
// runtime state so changes reach every replica without a redeploy.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storyweave/linksync/internal/domain"
	"github.com/storyweave/linksync/internal/linksync"
	"github.com/storyweave/linksync/internal/logger"
	"github.com/storyweave/linksync/internal/repository"
	"github.com/storyweave/linksync/internal/worker"
)

// Handler serves the admin endpoints
type Handler struct {
	state   repository.RuntimeState
	links   linksync.Service
	workers []*worker.SyncWorker
}

// NewHandler creates an admin handler over the given workers
func NewHandler(state repository.RuntimeState, links linksync.Service, workers []*worker.SyncWorker) *Handler {
	return &Handler{state: state, links: links, workers: workers}
}

// Routes mounts the admin endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/workers", h.handleListWorkers)
	r.Post("/workers/{name}/disable", h.handleDisableWorker)
	r.Post("/workers/{name}/enable", h.handleEnableWorker)
	r.Post("/workers/{name}/trigger", h.handleTriggerWorker)
	r.Get("/links/{id}", h.handleGetLink)
}

// workerStatus is the JSON shape of one worker in the listing
type workerStatus struct {
	Name             string     `json:"name"`
	Enabled          bool       `json:"enabled"`
	Disabled         bool       `json:"disabled"`
	NextRunAt        *time.Time `json:"next_run_at,omitempty"`
	LastFullSyncAt   *time.Time `json:"last_full_sync_at,omitempty"`
	CheckInterval    string     `json:"check_interval"`
	FullSyncInterval string     `json:"full_sync_interval"`
	BatchSize        int        `json:"batch_size"`
}

func (h *Handler) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	statuses := make([]workerStatus, 0, len(h.workers))
	for _, wk := range h.workers {
		status := workerStatus{
			Name:             wk.Name(),
			Enabled:          wk.Config().Enabled,
			CheckInterval:    wk.Config().CheckInterval.String(),
			FullSyncInterval: wk.Config().FullSyncInterval.String(),
			BatchSize:        wk.Config().BatchSize,
		}

		if v, err := h.state.Get(ctx, worker.DisabledKey(wk.Name())); err == nil {
			status.Disabled = v == worker.DisabledValue
		}
		if t, err := h.state.GetTime(ctx, worker.NextRunKey(wk.Name())); err == nil {
			status.NextRunAt = &t
		}
		if t, err := h.state.GetTime(ctx, worker.LastFullSyncKey(wk.Name())); err == nil {
			status.LastFullSyncAt = &t
		}

		statuses = append(statuses, status)
	}

	writeJSON(w, http.StatusOK, statuses)
}

func (h *Handler) handleDisableWorker(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.knownWorker(name) {
		writeError(w, http.StatusNotFound, "unknown worker")
		return
	}

	if err := h.state.Set(r.Context(), worker.DisabledKey(name), worker.DisabledValue); err != nil {
		logger.FromContext(r.Context()).Error(LogMsgOverrideWriteFailed, "worker", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to disable worker")
		return
	}

	logger.FromContext(r.Context()).Info(LogMsgWorkerDisabled, "worker", name)
	writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}

func (h *Handler) handleEnableWorker(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.knownWorker(name) {
		writeError(w, http.StatusNotFound, "unknown worker")
		return
	}

	if err := h.state.Delete(r.Context(), worker.DisabledKey(name)); err != nil {
		logger.FromContext(r.Context()).Error(LogMsgOverrideWriteFailed, "worker", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to enable worker")
		return
	}

	logger.FromContext(r.Context()).Info(LogMsgWorkerEnabled, "worker", name)
	writeJSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}

// handleTriggerWorker clears the persisted schedule so the next check runs
// the cycle immediately, subject to the usual lock
func (h *Handler) handleTriggerWorker(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.knownWorker(name) {
		writeError(w, http.StatusNotFound, "unknown worker")
		return
	}

	if err := h.state.Delete(r.Context(), worker.NextRunKey(name)); err != nil {
		logger.FromContext(r.Context()).Error(LogMsgOverrideWriteFailed, "worker", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to trigger worker")
		return
	}

	logger.FromContext(r.Context()).Info(LogMsgWorkerTriggered, "worker", name)
	writeJSON(w, http.StatusOK, map[string]string{"status": "triggered"})
}

// linkStatus is the JSON shape of one managed link
type linkStatus struct {
	Link          *domain.ManagedLink `json:"link"`
	ActiveImports int                 `json:"active_imports"`
	LastSyncAt    *time.Time          `json:"last_sync_at,omitempty"`
}

func (h *Handler) handleGetLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	linkID := chi.URLParam(r, "id")

	link, err := h.links.GetManagedLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			writeError(w, http.StatusNotFound, domain.ErrMsgLinkNotFound)
			return
		}
		logger.FromContext(ctx).Error(LogMsgLinkLookupFailed, "link_id", linkID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load link")
		return
	}

	imports, err := h.links.GetActiveImports(ctx, linkID)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgLinkLookupFailed, "link_id", linkID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load imports")
		return
	}

	lastSync, err := h.links.GetLastSyncTime(ctx, linkID)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgLinkLookupFailed, "link_id", linkID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load sync cursor")
		return
	}

	writeJSON(w, http.StatusOK, linkStatus{
		Link:          link,
		ActiveImports: len(imports),
		LastSyncAt:    lastSync,
	})
}

func (h *Handler) knownWorker(name string) bool {
	for _, wk := range h.workers {
		if wk.Name() == name {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

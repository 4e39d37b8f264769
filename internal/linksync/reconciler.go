package linksync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storyweave/linksync/internal/audit"
	"github.com/storyweave/linksync/internal/domain"
	"github.com/storyweave/linksync/internal/logger"
	"github.com/storyweave/linksync/internal/provider"
)

// Reconciler diffs remote provider state against recorded imports for one
// provider kind. The algorithm is provider-agnostic: upsert every observed
// item, then retire everything missing from the complete active set. Every
// mutation is idempotent, so an aborted pass is completed by the next one.
type Reconciler struct {
	links     Service
	fetcher   provider.Fetcher
	refresher provider.TokenRefresher // may be nil; auth failures then end the link
}

// NewReconciler creates a reconciler for one provider's fetcher
func NewReconciler(links Service, fetcher provider.Fetcher, refresher provider.TokenRefresher) *Reconciler {
	return &Reconciler{
		links:     links,
		fetcher:   fetcher,
		refresher: refresher,
	}
}

// ReconcileBatch processes up to batchSize links of the given kind
// sequentially. One link's failure never aborts the batch; its error travels
// in that link's SyncResult. forceFull bypasses the incremental cursor so
// deletion detection gets a complete set to diff against.
func (r *Reconciler) ReconcileBatch(ctx context.Context, kind string, batchSize int, forceFull bool, sink audit.Sink) ([]domain.SyncResult, error) {
	links, err := r.links.GetManagedLinks(ctx, kind, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load managed links for %s: %w", kind, err)
	}

	results := make([]domain.SyncResult, 0, len(links))
	for _, link := range links {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		result := r.reconcileLink(ctx, link, forceFull, sink)
		results = append(results, result)

		log := logger.FromContext(ctx).With("link_id", link.ID, "profile_id", link.ProfileID, "kind", link.Kind)
		if result.Err != nil {
			log.Warn(LogMsgLinkReconcileFailed, "error", result.Err)
			sink.Record(ctx, audit.Event{
				Type:       audit.EventTypeLinkFailed,
				WorkerName: kind,
				LinkID:     link.ID,
				ProfileID:  link.ProfileID,
				Detail:     map[string]interface{}{"error": result.Err.Error()},
				At:         time.Now().UTC(),
			})
			continue
		}
		log.Info(LogMsgLinkReconciled,
			"added", result.Added, "updated", result.Updated, "deleted", result.Deleted)
	}

	return results, nil
}

// reconcileLink runs the diff for a single link
func (r *Reconciler) reconcileLink(ctx context.Context, link domain.ManagedLink, forceFull bool, sink audit.Sink) domain.SyncResult {
	result := domain.SyncResult{LinkID: link.ID, ProfileID: link.ProfileID}
	log := logger.FromContext(ctx)

	var since *time.Time
	if !forceFull {
		var err error
		since, err = r.links.GetLastSyncTime(ctx, link.ID)
		if err != nil {
			result.Err = fmt.Errorf("failed to read sync cursor: %w", err)
			return result
		}
	}
	log.Debug(LogMsgReconcilingLink, "link_id", link.ID, "full", since == nil)

	fetched, err := r.fetchWithRefresh(ctx, link, since, sink)
	if err != nil {
		result.Err = err
		return result
	}

	activeIDs := make([]string, 0, len(fetched.Items))
	for _, item := range fetched.Items {
		created, err := r.links.UpsertImport(ctx, link.ID, item.RemoteID, item.Properties)
		if err != nil {
			// Stop here: retiring imports against a partially applied set
			// would soft-delete items we simply failed to record.
			result.Err = fmt.Errorf("failed to upsert import %q: %w", item.RemoteID, err)
			return result
		}
		if created {
			result.Added++
		} else {
			result.Updated++
		}
		activeIDs = append(activeIDs, item.RemoteID)
	}

	// Deletion detection needs the complete current active set. An
	// incremental fetch that only carries changed items has nothing correct
	// to diff against, so the step is skipped until the next full pass.
	if !fetched.Complete {
		log.Debug(LogMsgDeletionDetectionSkip, "link_id", link.ID)
		return result
	}

	deleted, err := r.links.MarkDeletedImports(ctx, link.ID, activeIDs)
	if err != nil {
		result.Err = fmt.Errorf("failed to mark deleted imports: %w", err)
		return result
	}
	result.Deleted = int(deleted)

	return result
}

// fetchWithRefresh fetches remote items, refreshing tokens once on an auth
// failure and retrying. A second failure ends processing for this link only.
func (r *Reconciler) fetchWithRefresh(ctx context.Context, link domain.ManagedLink, since *time.Time, sink audit.Sink) (*provider.FetchResult, error) {
	fetched, err := r.fetcher.FetchRemoteItems(ctx, link, since)
	if err == nil {
		return fetched, nil
	}
	if !errors.Is(err, domain.ErrAuthFailed) || r.refresher == nil {
		return nil, fmt.Errorf("failed to fetch remote items: %w", err)
	}

	log := logger.FromContext(ctx)
	token, refreshErr := r.refresher.RefreshToken(ctx, link.AuthRefreshToken)
	if refreshErr != nil {
		log.Warn(LogMsgTokenRefreshFailed, "link_id", link.ID, "error", refreshErr)
		return nil, fmt.Errorf("failed to refresh tokens: %w", refreshErr)
	}

	if err := r.links.UpdateLinkTokens(ctx, link.ID, token.AccessToken, token.ExpiresAt, token.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}
	log.Info(LogMsgTokenRefreshed, "link_id", link.ID)
	sink.Record(ctx, audit.Event{
		Type:       audit.EventTypeTokensRefreshed,
		WorkerName: link.Kind,
		LinkID:     link.ID,
		ProfileID:  link.ProfileID,
		At:         time.Now().UTC(),
	})

	link.AuthAccessToken = token.AccessToken
	link.AuthRefreshToken = token.RefreshToken

	fetched, err = r.fetcher.FetchRemoteItems(ctx, link, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote items after token refresh: %w", err)
	}
	return fetched, nil
}

package linksync

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/storyweave/linksync/internal/domain"
	"github.com/storyweave/linksync/internal/repository"
)

// Service defines link-sync business operations over the repository.
type Service interface {
	GetManagedLinks(ctx context.Context, kind string, limit int) ([]domain.ManagedLink, error)
	GetManagedLink(ctx context.Context, linkID string) (*domain.ManagedLink, error)
	GetLastSyncTime(ctx context.Context, linkID string) (*time.Time, error)
	UpsertImport(ctx context.Context, linkID, remoteID string, properties map[string]interface{}) (bool, error)
	MarkDeletedImports(ctx context.Context, linkID string, activeRemoteIDs []string) (int64, error)
	GetActiveImports(ctx context.Context, linkID string) ([]domain.LinkImport, error)
	UpdateLinkTokens(ctx context.Context, linkID, accessToken string, expiresAt time.Time, refreshToken string) error
}

// service implements the Service interface
type service struct {
	repo repository.LinkSync

	// Link metadata cache for read-mostly lookups (status endpoints, audit
	// enrichment). Sync scheduling state is never cached here: correctness
	// across replicas depends on every instance reading shared storage.
	linkCache *lru.Cache[string, domain.ManagedLink]
}

// NewService creates a new link-sync service
func NewService(repo repository.LinkSync) (Service, error) {
	cache, err := lru.New[string, domain.ManagedLink](DefaultLinkCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create link cache: %w", err)
	}
	return &service{repo: repo, linkCache: cache}, nil
}

// GetManagedLinks returns links eligible for syncing, bounded by limit
func (s *service) GetManagedLinks(ctx context.Context, kind string, limit int) ([]domain.ManagedLink, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	return s.repo.GetManagedLinks(ctx, kind, limit)
}

// GetManagedLink returns one link by ID, serving repeated lookups from cache
func (s *service) GetManagedLink(ctx context.Context, linkID string) (*domain.ManagedLink, error) {
	if link, ok := s.linkCache.Get(linkID); ok {
		return &link, nil
	}

	link, err := s.repo.GetManagedLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	s.linkCache.Add(linkID, *link)
	return link, nil
}

// GetLastSyncTime returns the cursor for incremental fetches, nil meaning
// "never synced - fetch everything"
func (s *service) GetLastSyncTime(ctx context.Context, linkID string) (*time.Time, error) {
	return s.repo.GetLastSyncTime(ctx, linkID)
}

// UpsertImport records one observed remote item; created reports whether the
// item was seen for the first time
func (s *service) UpsertImport(ctx context.Context, linkID, remoteID string, properties map[string]interface{}) (bool, error) {
	if linkID == "" || remoteID == "" {
		return false, fmt.Errorf("%w: link ID and remote ID are required", domain.ErrInvalidInput)
	}
	return s.repo.UpsertImport(ctx, linkID, remoteID, properties)
}

// MarkDeletedImports retires every active import absent from activeRemoteIDs
func (s *service) MarkDeletedImports(ctx context.Context, linkID string, activeRemoteIDs []string) (int64, error) {
	if linkID == "" {
		return 0, fmt.Errorf("%w: link ID is required", domain.ErrInvalidInput)
	}
	return s.repo.MarkDeletedImports(ctx, linkID, activeRemoteIDs)
}

// GetActiveImports returns the non-deleted imports for a link
func (s *service) GetActiveImports(ctx context.Context, linkID string) ([]domain.LinkImport, error) {
	return s.repo.GetActiveImports(ctx, linkID)
}

// UpdateLinkTokens persists refreshed credentials and drops the stale cache entry
func (s *service) UpdateLinkTokens(ctx context.Context, linkID, accessToken string, expiresAt time.Time, refreshToken string) error {
	if err := s.repo.UpdateLinkTokens(ctx, linkID, accessToken, expiresAt, refreshToken); err != nil {
		return err
	}
	s.linkCache.Remove(linkID)
	return nil
}

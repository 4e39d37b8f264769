package repository

import (
	"context"
	"time"

	"github.com/storyweave/linksync/internal/domain"
)

// LinkSync defines persistence for managed links and their imports.
type LinkSync interface {
	// GetManagedLinks returns links of the given kind eligible for syncing,
	// bounded by limit. Order is unspecified.
	GetManagedLinks(ctx context.Context, kind string, limit int) ([]domain.ManagedLink, error)

	// GetManagedLink returns one link by ID, or domain.ErrLinkNotFound.
	GetManagedLink(ctx context.Context, linkID string) (*domain.ManagedLink, error)

	// GetLastSyncTime returns the CreatedAt of the most recent non-deleted
	// import for the link, or nil when none exists. Nil tells the caller to
	// perform a full historical fetch.
	GetLastSyncTime(ctx context.Context, linkID string) (*time.Time, error)

	// UpsertImport creates or refreshes the active import identified by
	// (linkID, remoteID). Properties are replaced wholesale on update.
	// created reports whether a new row was inserted. Idempotent.
	UpsertImport(ctx context.Context, linkID, remoteID string, properties map[string]interface{}) (created bool, err error)

	// MarkDeletedImports soft-deletes every active import for linkID whose
	// RemoteID is absent from activeRemoteIDs, returning the count retired.
	MarkDeletedImports(ctx context.Context, linkID string, activeRemoteIDs []string) (int64, error)

	// GetActiveImports returns the non-deleted imports for a link.
	GetActiveImports(ctx context.Context, linkID string) ([]domain.LinkImport, error)

	// UpdateLinkTokens persists refreshed OAuth credentials for a link.
	UpdateLinkTokens(ctx context.Context, linkID, accessToken string, expiresAt time.Time, refreshToken string) error
}

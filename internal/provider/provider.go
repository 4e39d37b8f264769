// Package provider declares the collaborator interfaces each external
// content source implements. The sync engine only depends on these; the
// concrete HTTP clients live outside this repository.
package provider

import (
	"context"
	"time"

	"github.com/storyweave/linksync/internal/domain"
)

// FetchResult is the outcome of one provider listing call.
type FetchResult struct {
	Items []domain.RemoteItem

	// Complete reports whether Items enumerates every currently existing
	// remote item, not just the ones changed since the cursor. When false,
	// deletion detection is skipped for the cycle because there is nothing
	// correct to diff against.
	Complete bool
}

// Fetcher lists remote items for one managed link. A nil since requests the
// full historical set; implementations signal credential rejection by
// wrapping domain.ErrAuthFailed.
type Fetcher interface {
	FetchRemoteItems(ctx context.Context, link domain.ManagedLink, since *time.Time) (*FetchResult, error)
}

// Token is a refreshed OAuth credential set.
type Token struct {
	AccessToken  string
	ExpiresAt    time.Time
	RefreshToken string
}

// TokenRefresher exchanges a refresh token for new credentials.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*Token, error)
}

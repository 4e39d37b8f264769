package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storyweave/linksync/internal/domain"
	"github.com/storyweave/linksync/internal/repository"
)

// LinkSyncRepository implements link/import persistence for PostgreSQL
type LinkSyncRepository struct {
	db *pgxpool.Pool
}

// NewLinkSyncRepository creates a new LinkSyncRepository
func NewLinkSyncRepository(db *pgxpool.Pool) repository.LinkSync {
	return &LinkSyncRepository{db: db}
}

// GetManagedLinks returns up to limit links of the given kind
func (r *LinkSyncRepository) GetManagedLinks(ctx context.Context, kind string, limit int) ([]domain.ManagedLink, error) {
	if !domain.ValidKind(kind) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidKind, kind)
	}

	query := `
		SELECT id, profile_id, kind, remote_id,
		       auth_access_token, auth_access_token_expires_at, auth_refresh_token,
		       created_at, updated_at
		FROM profile_links
		WHERE kind = $1
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query managed links: %w", err)
	}
	defer rows.Close()

	var links []domain.ManagedLink
	for rows.Next() {
		var link domain.ManagedLink
		if err := rows.Scan(
			&link.ID, &link.ProfileID, &link.Kind, &link.RemoteID,
			&link.AuthAccessToken, &link.AuthAccessTokenExpiresAt, &link.AuthRefreshToken,
			&link.CreatedAt, &link.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan managed link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate managed links: %w", err)
	}

	return links, nil
}

// GetManagedLink returns one link by ID
func (r *LinkSyncRepository) GetManagedLink(ctx context.Context, linkID string) (*domain.ManagedLink, error) {
	query := `
		SELECT id, profile_id, kind, remote_id,
		       auth_access_token, auth_access_token_expires_at, auth_refresh_token,
		       created_at, updated_at
		FROM profile_links
		WHERE id = $1
	`
	var link domain.ManagedLink
	err := r.db.QueryRow(ctx, query, linkID).Scan(
		&link.ID, &link.ProfileID, &link.Kind, &link.RemoteID,
		&link.AuthAccessToken, &link.AuthAccessTokenExpiresAt, &link.AuthRefreshToken,
		&link.CreatedAt, &link.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get managed link: %w", err)
	}
	return &link, nil
}

// GetLastSyncTime returns the CreatedAt of the newest active import, or nil
// when the link has never imported anything (callers then do a full fetch)
func (r *LinkSyncRepository) GetLastSyncTime(ctx context.Context, linkID string) (*time.Time, error) {
	query := `
		SELECT created_at
		FROM profile_link_imports
		WHERE profile_link_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`
	var t time.Time
	err := r.db.QueryRow(ctx, query, linkID).Scan(&t)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last sync time: %w", err)
	}
	return &t, nil
}

// UpsertImport inserts a new active import or replaces the properties of the
// existing one. The partial unique index on (profile_link_id, remote_id)
// WHERE deleted_at IS NULL makes this idempotent; xmax = 0 distinguishes a
// fresh insert from a conflict update.
func (r *LinkSyncRepository) UpsertImport(ctx context.Context, linkID, remoteID string, properties map[string]interface{}) (bool, error) {
	propertiesJSON, err := json.Marshal(properties)
	if err != nil {
		return false, fmt.Errorf("failed to marshal import properties: %w", err)
	}

	query := `
		INSERT INTO profile_link_imports (id, profile_link_id, remote_id, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (profile_link_id, remote_id) WHERE deleted_at IS NULL
		DO UPDATE SET properties = EXCLUDED.properties, updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`
	var inserted bool
	err = r.db.QueryRow(ctx, query, uuid.NewString(), linkID, remoteID, propertiesJSON).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert import: %w", err)
	}
	return inserted, nil
}

// MarkDeletedImports soft-deletes every active import for the link whose
// remote ID is not in activeRemoteIDs. An empty set retires everything.
func (r *LinkSyncRepository) MarkDeletedImports(ctx context.Context, linkID string, activeRemoteIDs []string) (int64, error) {
	if activeRemoteIDs == nil {
		activeRemoteIDs = []string{}
	}

	query := `
		UPDATE profile_link_imports
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE profile_link_id = $1
		  AND deleted_at IS NULL
		  AND NOT (remote_id = ANY($2))
	`
	tag, err := r.db.Exec(ctx, query, linkID, activeRemoteIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to mark deleted imports: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetActiveImports returns the non-deleted imports for a link
func (r *LinkSyncRepository) GetActiveImports(ctx context.Context, linkID string) ([]domain.LinkImport, error) {
	query := `
		SELECT id, profile_link_id, remote_id, properties, created_at, updated_at, deleted_at
		FROM profile_link_imports
		WHERE profile_link_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active imports: %w", err)
	}
	defer rows.Close()

	var imports []domain.LinkImport
	for rows.Next() {
		var imp domain.LinkImport
		var propertiesJSON []byte
		if err := rows.Scan(
			&imp.ID, &imp.ProfileLinkID, &imp.RemoteID, &propertiesJSON,
			&imp.CreatedAt, &imp.UpdatedAt, &imp.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		if len(propertiesJSON) > 0 {
			if err := json.Unmarshal(propertiesJSON, &imp.Properties); err != nil {
				return nil, fmt.Errorf("failed to unmarshal import properties: %w", err)
			}
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate imports: %w", err)
	}

	return imports, nil
}

// UpdateLinkTokens persists refreshed OAuth credentials for a link
func (r *LinkSyncRepository) UpdateLinkTokens(ctx context.Context, linkID, accessToken string, expiresAt time.Time, refreshToken string) error {
	query := `
		UPDATE profile_links
		SET auth_access_token = $1,
		    auth_access_token_expires_at = $2,
		    auth_refresh_token = $3,
		    updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, accessToken, expiresAt, refreshToken, linkID)
	if err != nil {
		return fmt.Errorf("failed to update link tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

package linksync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyweave/linksync/internal/domain"
)

// TestUpsertImport_Idempotent verifies calling twice with identical arguments
// leaves exactly one active row with the same generated ID.
func TestUpsertImport_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	svc := newTestService(t, repo)
	link := seedLink(repo, domain.KindGitHub)

	props := map[string]interface{}{"name": "X", "stars": 3}

	created, err := svc.UpsertImport(ctx, link.ID, "X", props)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.UpsertImport(ctx, link.ID, "X", props)
	require.NoError(t, err)
	assert.False(t, created)

	imports, err := svc.GetActiveImports(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, "X", imports[0].RemoteID)

	all := repo.AllImports(link.ID)
	assert.Len(t, all, 1, "no duplicate rows")
}

func TestUpsertImport_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMockRepository())

	_, err := svc.UpsertImport(ctx, "", "X", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpsertImport(ctx, "link-1", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarkDeletedImports_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMockRepository())

	_, err := svc.MarkDeletedImports(ctx, "", []string{"a"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestGetManagedLink_Cached verifies repeated lookups are served from cache
// and that a token update drops the stale entry.
func TestGetManagedLink_Cached(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	svc := newTestService(t, repo)
	link := seedLink(repo, domain.KindSlides)

	for i := 0; i < 3; i++ {
		got, err := svc.GetManagedLink(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
	}
	assert.Equal(t, 1, repo.GetManagedLinkCalls, "second and third lookups hit the cache")

	err := svc.UpdateLinkTokens(ctx, link.ID, "rotated", time.Now().Add(time.Hour), "rotated-refresh")
	require.NoError(t, err)

	got, err := svc.GetManagedLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.AuthAccessToken, "cache entry invalidated on token update")
	assert.Equal(t, 2, repo.GetManagedLinkCalls)
}

func TestGetManagedLink_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMockRepository())

	_, err := svc.GetManagedLink(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrLinkNotFound)
}

// TestGetLastSyncTime_NeverSynced verifies a link without imports yields a
// nil cursor, which triggers the full historical fetch.
func TestGetLastSyncTime_NeverSynced(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	svc := newTestService(t, repo)
	link := seedLink(repo, domain.KindGitHub)

	cursor, err := svc.GetLastSyncTime(ctx, link.ID)
	require.NoError(t, err)
	assert.Nil(t, cursor)

	_, err = svc.UpsertImport(ctx, link.ID, "a", nil)
	require.NoError(t, err)

	cursor, err = svc.GetLastSyncTime(ctx, link.ID)
	require.NoError(t, err)
	assert.NotNil(t, cursor)
}

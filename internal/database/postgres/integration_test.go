package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/storyweave/linksync/internal/database"
	"github.com/storyweave/linksync/internal/domain"
	"github.com/storyweave/linksync/internal/locks"
)

func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	var pgContainer *postgres.PostgresContainer
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping integration test due to panic (likely Docker issue): %v", r)
			}
		}()
		pgContainer, err = postgres.Run(ctx,
			"postgres:15-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(5*time.Second)),
		)
	}()

	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	if pgContainer == nil {
		return nil
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr, database.DefaultPoolConfig())
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := applyMigrations(ctx, pool, "../../../migrations"); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	return pool
}

func insertLink(t *testing.T, pool *pgxpool.Pool, kind string) string {
	t.Helper()

	linkID := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO profile_links (id, profile_id, kind, remote_id, auth_access_token, auth_refresh_token)
		VALUES ($1, $2, $3, $4, 'access', 'refresh')
	`, linkID, uuid.NewString(), kind, "acct-"+linkID[:8])
	if err != nil {
		t.Fatalf("failed to insert link: %v", err)
	}
	return linkID
}

func TestLinkSyncRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := setupTestPool(t)
	repo := NewLinkSyncRepository(pool)

	t.Run("UpsertImport Idempotency", func(t *testing.T) {
		linkID := insertLink(t, pool, domain.KindGitHub)

		created, err := repo.UpsertImport(ctx, linkID, "repo-a", map[string]interface{}{"stars": 1})
		if err != nil {
			t.Fatalf("UpsertImport failed: %v", err)
		}
		if !created {
			t.Error("expected first upsert to create")
		}

		created, err = repo.UpsertImport(ctx, linkID, "repo-a", map[string]interface{}{"stars": 2})
		if err != nil {
			t.Fatalf("UpsertImport failed: %v", err)
		}
		if created {
			t.Error("expected second upsert to update, not create")
		}

		imports, err := repo.GetActiveImports(ctx, linkID)
		if err != nil {
			t.Fatalf("GetActiveImports failed: %v", err)
		}
		if len(imports) != 1 {
			t.Fatalf("expected 1 active import, got %d", len(imports))
		}
		if imports[0].Properties["stars"].(float64) != 2 {
			t.Errorf("expected properties replaced, got %v", imports[0].Properties)
		}
	})

	t.Run("MarkDeletedImports Diff", func(t *testing.T) {
		linkID := insertLink(t, pool, domain.KindYouTube)

		for _, id := range []string{"a", "b", "c"} {
			if _, err := repo.UpsertImport(ctx, linkID, id, nil); err != nil {
				t.Fatalf("UpsertImport failed: %v", err)
			}
		}

		count, err := repo.MarkDeletedImports(ctx, linkID, []string{"a", "c"})
		if err != nil {
			t.Fatalf("MarkDeletedImports failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 soft-deleted, got %d", count)
		}

		imports, err := repo.GetActiveImports(ctx, linkID)
		if err != nil {
			t.Fatalf("GetActiveImports failed: %v", err)
		}
		if len(imports) != 2 {
			t.Errorf("expected 2 active imports, got %d", len(imports))
		}
		for _, imp := range imports {
			if imp.RemoteID == "b" {
				t.Error("soft-deleted import still active")
			}
		}

		// The soft-deleted row is retained as history
		var total int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM profile_link_imports WHERE profile_link_id = $1`, linkID).Scan(&total); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if total != 3 {
			t.Errorf("expected 3 total rows including history, got %d", total)
		}
	})

	t.Run("MarkDeletedImports Empty Set Retires Everything", func(t *testing.T) {
		linkID := insertLink(t, pool, domain.KindSlides)

		if _, err := repo.UpsertImport(ctx, linkID, "deck-1", nil); err != nil {
			t.Fatalf("UpsertImport failed: %v", err)
		}

		count, err := repo.MarkDeletedImports(ctx, linkID, nil)
		if err != nil {
			t.Fatalf("MarkDeletedImports failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 soft-deleted, got %d", count)
		}
	})

	t.Run("Reappearing Remote ID Creates New Row", func(t *testing.T) {
		linkID := insertLink(t, pool, domain.KindGitHub)

		if _, err := repo.UpsertImport(ctx, linkID, "repo-x", nil); err != nil {
			t.Fatalf("UpsertImport failed: %v", err)
		}
		first, err := repo.GetActiveImports(ctx, linkID)
		if err != nil {
			t.Fatalf("GetActiveImports failed: %v", err)
		}

		if _, err := repo.MarkDeletedImports(ctx, linkID, nil); err != nil {
			t.Fatalf("MarkDeletedImports failed: %v", err)
		}

		created, err := repo.UpsertImport(ctx, linkID, "repo-x", nil)
		if err != nil {
			t.Fatalf("UpsertImport failed: %v", err)
		}
		if !created {
			t.Error("expected a fresh row after the old one was retired")
		}

		second, err := repo.GetActiveImports(ctx, linkID)
		if err != nil {
			t.Fatalf("GetActiveImports failed: %v", err)
		}
		if len(second) != 1 {
			t.Fatalf("expected 1 active import, got %d", len(second))
		}
		if second[0].ID == first[0].ID {
			t.Error("reappearing remote ID must not resurrect the retired row")
		}
	})

	t.Run("GetLastSyncTime", func(t *testing.T) {
		linkID := insertLink(t, pool, domain.KindYouTube)

		cursor, err := repo.GetLastSyncTime(ctx, linkID)
		if err != nil {
			t.Fatalf("GetLastSyncTime failed: %v", err)
		}
		if cursor != nil {
			t.Error("expected nil cursor for a link that never imported")
		}

		if _, err := repo.UpsertImport(ctx, linkID, "v1", nil); err != nil {
			t.Fatalf("UpsertImport failed: %v", err)
		}

		cursor, err = repo.GetLastSyncTime(ctx, linkID)
		if err != nil {
			t.Fatalf("GetLastSyncTime failed: %v", err)
		}
		if cursor == nil {
			t.Fatal("expected cursor after first import")
		}
	})

	t.Run("UpdateLinkTokens", func(t *testing.T) {
		linkID := insertLink(t, pool, domain.KindSlides)

		expiry := time.Now().Add(time.Hour).UTC()
		if err := repo.UpdateLinkTokens(ctx, linkID, "new-access", expiry, "new-refresh"); err != nil {
			t.Fatalf("UpdateLinkTokens failed: %v", err)
		}

		link, err := repo.GetManagedLink(ctx, linkID)
		if err != nil {
			t.Fatalf("GetManagedLink failed: %v", err)
		}
		if link.AuthAccessToken != "new-access" || link.AuthRefreshToken != "new-refresh" {
			t.Errorf("tokens not persisted: %+v", link)
		}

		err = repo.UpdateLinkTokens(ctx, uuid.NewString(), "x", expiry, "y")
		if !errors.Is(err, domain.ErrLinkNotFound) {
			t.Errorf("expected ErrLinkNotFound, got %v", err)
		}
	})

	t.Run("GetManagedLinks Filters By Kind", func(t *testing.T) {
		insertLink(t, pool, domain.KindGitHub)

		links, err := repo.GetManagedLinks(ctx, domain.KindGitHub, 100)
		if err != nil {
			t.Fatalf("GetManagedLinks failed: %v", err)
		}
		for _, link := range links {
			if link.Kind != domain.KindGitHub {
				t.Errorf("unexpected kind %q in result", link.Kind)
			}
		}

		if _, err := repo.GetManagedLinks(ctx, "myspace", 10); !errors.Is(err, domain.ErrInvalidKind) {
			t.Errorf("expected ErrInvalidKind, got %v", err)
		}
	})

	t.Run("GetManagedLink Not Found", func(t *testing.T) {
		_, err := repo.GetManagedLink(ctx, uuid.NewString())
		if !errors.Is(err, domain.ErrLinkNotFound) {
			t.Errorf("expected ErrLinkNotFound, got %v", err)
		}
	})
}

func TestRuntimeStateRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := setupTestPool(t)

	t.Run("KV Operations", func(t *testing.T) {
		state := NewRuntimeStateRepository(pool)

		_, err := state.Get(ctx, "missing")
		if !errors.Is(err, domain.ErrStateNotFound) {
			t.Errorf("expected ErrStateNotFound, got %v", err)
		}

		if err := state.Set(ctx, "k", "v1"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := state.Set(ctx, "k", "v2"); err != nil {
			t.Fatalf("Set overwrite failed: %v", err)
		}

		v, err := state.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if v != "v2" {
			t.Errorf("expected v2, got %q", v)
		}

		if err := state.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := state.Delete(ctx, "k"); err != nil {
			t.Errorf("deleting an absent key should be a no-op, got %v", err)
		}
		if _, err := state.Get(ctx, "k"); !errors.Is(err, domain.ErrStateNotFound) {
			t.Errorf("expected ErrStateNotFound after delete, got %v", err)
		}
	})

	t.Run("Time Round Trip", func(t *testing.T) {
		state := NewRuntimeStateRepository(pool)

		want := time.Now().UTC().Truncate(time.Microsecond)
		if err := state.SetTime(ctx, "github.next_run_at", want); err != nil {
			t.Fatalf("SetTime failed: %v", err)
		}

		got, err := state.GetTime(ctx, "github.next_run_at")
		if err != nil {
			t.Fatalf("GetTime failed: %v", err)
		}
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("Advisory Lock Mutual Exclusion", func(t *testing.T) {
		// Two repository instances stand in for two replicas; each pins its
		// own session, so the second acquisition must lose without blocking.
		replicaA := NewRuntimeStateRepository(pool)
		replicaB := NewRuntimeStateRepository(pool)
		lockID := locks.GitHubSyncLock

		acquired, err := replicaA.TryLock(ctx, lockID)
		if err != nil {
			t.Fatalf("TryLock failed: %v", err)
		}
		if !acquired {
			t.Fatal("expected first acquisition to succeed")
		}

		start := time.Now()
		acquired, err = replicaB.TryLock(ctx, lockID)
		if err != nil {
			t.Fatalf("TryLock failed: %v", err)
		}
		if acquired {
			t.Error("expected contended acquisition to fail")
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("contended TryLock took %v, must not block", elapsed)
		}

		if err := replicaA.ReleaseLock(ctx, lockID); err != nil {
			t.Fatalf("ReleaseLock failed: %v", err)
		}

		acquired, err = replicaB.TryLock(ctx, lockID)
		if err != nil {
			t.Fatalf("TryLock failed: %v", err)
		}
		if !acquired {
			t.Error("expected acquisition to succeed after release")
		}
		if err := replicaB.ReleaseLock(ctx, lockID); err != nil {
			t.Fatalf("ReleaseLock failed: %v", err)
		}
	})

	t.Run("Release Without Hold Fails", func(t *testing.T) {
		state := NewRuntimeStateRepository(pool)
		if err := state.ReleaseLock(ctx, locks.SlidesSyncLock); err == nil {
			t.Error("expected error releasing a lock that is not held")
		}
	})

	t.Run("Independent Locks Do Not Contend", func(t *testing.T) {
		state := NewRuntimeStateRepository(pool)

		for _, id := range locks.All() {
			acquired, err := state.TryLock(ctx, id)
			if err != nil {
				t.Fatalf("TryLock %d failed: %v", id, err)
			}
			if !acquired {
				t.Errorf("expected lock %d to be free", id)
			}
		}
		for _, id := range locks.All() {
			if err := state.ReleaseLock(ctx, id); err != nil {
				t.Fatalf("ReleaseLock %d failed: %v", id, err)
			}
		}
	})
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool, migrationsDir string) error {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations dir: %w", err)
	}

	var migrationFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			migrationFiles = append(migrationFiles, filepath.Join(migrationsDir, entry.Name()))
		}
	}
	sort.Strings(migrationFiles)

	for _, file := range migrationFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		// Execute only the goose Up section
		contentStr := string(content)
		if downIdx := strings.Index(contentStr, "-- +goose Down"); downIdx != -1 {
			contentStr = contentStr[:downIdx]
		}

		if _, err := pool.Exec(ctx, contentStr); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}
	return nil
}

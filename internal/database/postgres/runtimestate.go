package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storyweave/linksync/internal/domain"
	"github.com/storyweave/linksync/internal/repository"
)

// RuntimeStateRepository implements the runtime KV store and advisory locks
// for PostgreSQL. Advisory locks are session-scoped, so each held lock pins
// one pool connection until released; the connection map is the only local
// state and holds no cached values.
type RuntimeStateRepository struct {
	db *pgxpool.Pool

	mu        sync.Mutex
	lockConns map[int64]*pgxpool.Conn
}

// NewRuntimeStateRepository creates a new RuntimeStateRepository
func NewRuntimeStateRepository(db *pgxpool.Pool) repository.RuntimeState {
	return &RuntimeStateRepository{
		db:        db,
		lockConns: make(map[int64]*pgxpool.Conn),
	}
}

// Get returns the value stored under key
func (r *RuntimeStateRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM runtime_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", domain.ErrStateNotFound
		}
		return "", fmt.Errorf("failed to get runtime state %q: %w", key, err)
	}
	return value, nil
}

// Set writes or overwrites the value stored under key
func (r *RuntimeStateRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO runtime_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set runtime state %q: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting an absent key is a no-op
func (r *RuntimeStateRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM runtime_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete runtime state %q: %w", key, err)
	}
	return nil
}

// GetTime returns the time stored under key
func (r *RuntimeStateRepository) GetTime(ctx context.Context, key string) (time.Time, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse runtime state time %q: %w", key, err)
	}
	return t, nil
}

// SetTime writes a time value under key
func (r *RuntimeStateRepository) SetTime(ctx context.Context, key string, t time.Time) error {
	return r.Set(ctx, key, t.UTC().Format(time.RFC3339Nano))
}

// TryLock attempts a non-blocking advisory lock acquisition. On success the
// backing connection stays checked out until ReleaseLock, keeping the lock
// bound to one live session; if that session dies, Postgres releases the lock.
func (r *RuntimeStateRepository) TryLock(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	if _, held := r.lockConns[id]; held {
		r.mu.Unlock()
		// Already held by this process; treat as contended rather than
		// re-entering the session-level lock.
		return false, nil
	}
	r.mu.Unlock()

	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire connection for lock %d: %w", id, err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, id).Scan(&acquired); err != nil {
		conn.Release()
		return false, fmt.Errorf("failed to try advisory lock %d: %w", id, err)
	}
	if !acquired {
		conn.Release()
		return false, nil
	}

	r.mu.Lock()
	r.lockConns[id] = conn
	r.mu.Unlock()
	return true, nil
}

// ReleaseLock releases a held advisory lock and returns its connection to
// the pool
func (r *RuntimeStateRepository) ReleaseLock(ctx context.Context, id int64) error {
	r.mu.Lock()
	conn, held := r.lockConns[id]
	delete(r.lockConns, id)
	r.mu.Unlock()

	if !held {
		return fmt.Errorf("advisory lock %d is not held", id)
	}
	defer conn.Release()

	var released bool
	if err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, id).Scan(&released); err != nil {
		return fmt.Errorf("failed to release advisory lock %d: %w", id, err)
	}
	if !released {
		return fmt.Errorf("advisory lock %d was not held by this session", id)
	}
	return nil
}

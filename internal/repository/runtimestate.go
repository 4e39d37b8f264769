package repository

import (
	"context"
	"time"
)

// RuntimeState defines durable key/value pairs and named advisory locks used
// for cross-instance coordination. Implementations must not cache: every
// replica has to observe the same state.
type RuntimeState interface {
	// Get returns the value for key, or domain.ErrStateNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes or overwrites the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// GetTime returns the time stored under key, or domain.ErrStateNotFound
	// when never written - callers treat that as "due now".
	GetTime(ctx context.Context, key string) (time.Time, error)

	// SetTime writes a time value under key.
	SetTime(ctx context.Context, key string, t time.Time) error

	// TryLock attempts to acquire the advisory lock without blocking.
	// Contention yields acquired=false, not an error.
	TryLock(ctx context.Context, id int64) (acquired bool, err error)

	// ReleaseLock releases a held advisory lock. The lock is session-scoped,
	// so release failures are logged by callers rather than escalated.
	ReleaseLock(ctx context.Context, id int64) error
}

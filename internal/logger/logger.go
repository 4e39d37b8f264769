package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type ctxKey string

const syncIDKey ctxKey = "syncID"

// GenerateSyncID creates a new UUID for correlating all logs of one sync cycle.
func GenerateSyncID() string {
	return uuid.NewString()
}

// WithSyncID returns a new context containing the sync cycle ID.
func WithSyncID(ctx context.Context, syncID string) context.Context {
	return context.WithValue(ctx, syncIDKey, syncID)
}

// SyncIDFromContext extracts the sync cycle ID from the context, if present.
func SyncIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(syncIDKey)
	if v == nil {
		return "", false
	}
	if id, ok := v.(string); ok {
		return id, true
	}
	return "", false
}

// FromContext returns a logger that includes the sync_id attribute when present.
func FromContext(ctx context.Context) *slog.Logger {
	if id, ok := SyncIDFromContext(ctx); ok {
		return slog.Default().With(AttrKeySyncID, id)
	}
	return slog.Default()
}

// Init builds a slog handler from the config and installs it as the default.
func Init(cfg Config) {
	opts := &slog.HandlerOptions{
		Level:     cfg.LogLevel(),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.IsJSON() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler.WithAttrs(cfg.BaseAttributes()))
	slog.SetDefault(logger)
}

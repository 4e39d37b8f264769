// Package audit provides best-effort event recording for sync activity.
// Sinks never return errors to callers; a lost audit event must not affect
// the cycle that produced it.
package audit

import (
	"context"
	"time"

	"github.com/storyweave/linksync/internal/logger"
)

// Event types recorded by the sync engine
const (
	EventTypeCycleCompleted  = "sync.cycle_completed"
	EventTypeCycleFailed     = "sync.cycle_failed"
	EventTypeLinkFailed      = "sync.link_failed"
	EventTypeTokensRefreshed = "sync.tokens_refreshed"
)

// Event is one recorded sync occurrence.
type Event struct {
	Type       string
	WorkerName string
	LinkID     string
	ProfileID  string
	Detail     map[string]interface{}
	At         time.Time
}

// Sink records events fire-and-forget.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// SlogSink writes audit events to the structured log.
type SlogSink struct{}

// NewSlogSink creates a new SlogSink
func NewSlogSink() *SlogSink {
	return &SlogSink{}
}

// Record logs the event
func (s *SlogSink) Record(ctx context.Context, e Event) {
	log := logger.FromContext(ctx).With(
		"audit_type", e.Type,
		"worker", e.WorkerName,
	)
	if e.LinkID != "" {
		log = log.With("link_id", e.LinkID, "profile_id", e.ProfileID)
	}
	for k, v := range e.Detail {
		log = log.With(k, v)
	}

	switch e.Type {
	case EventTypeLinkFailed, EventTypeCycleFailed:
		log.Warn("Audit event")
	default:
		log.Info("Audit event")
	}
}

// NopSink discards every event.
type NopSink struct{}

// Record discards the event
func (NopSink) Record(context.Context, Event) {}

// MultiSink fans one event out to several sinks.
type MultiSink []Sink

// Record forwards the event to every sink
func (m MultiSink) Record(ctx context.Context, e Event) {
	for _, s := range m {
		s.Record(ctx, e)
	}
}

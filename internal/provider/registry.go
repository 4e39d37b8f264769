package provider

import (
	"fmt"
	"sync"

	"github.com/storyweave/linksync/internal/domain"
)

// Registry holds the fetcher and token refresher wired for each provider
// kind. Concrete clients register at startup; kinds without a registration
// simply get no worker.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
	refresh  map[string]TokenRefresher
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		fetchers: make(map[string]Fetcher),
		refresh:  make(map[string]TokenRefresher),
	}
}

// Register wires a fetcher (and optionally a token refresher) for a kind
func (r *Registry) Register(kind string, fetcher Fetcher, refresher TokenRefresher) error {
	if !domain.ValidKind(kind) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidKind, kind)
	}
	if fetcher == nil {
		return fmt.Errorf("%w: fetcher is required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[kind] = fetcher
	if refresher != nil {
		r.refresh[kind] = refresher
	}
	return nil
}

// Fetcher returns the fetcher registered for kind, if any
func (r *Registry) Fetcher(kind string) (Fetcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fetchers[kind]
	return f, ok
}

// TokenRefresher returns the refresher registered for kind, or nil
func (r *Registry) TokenRefresher(kind string) TokenRefresher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refresh[kind]
}

package linksync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storyweave/linksync/internal/domain"
)

// MockRepository implements repository.LinkSync in memory for testing
type MockRepository struct {
	mu      sync.Mutex
	links   map[string]domain.ManagedLink
	imports map[string][]*domain.LinkImport // keyed by link ID, insertion order

	// Failure injection
	UpsertErr     error
	MarkDeleteErr error
	GetLinksErr   error

	// Call counters
	GetManagedLinkCalls int
}

// NewMockRepository creates an empty MockRepository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		links:   make(map[string]domain.ManagedLink),
		imports: make(map[string][]*domain.LinkImport),
	}
}

// AddLink seeds a managed link
func (m *MockRepository) AddLink(link domain.ManagedLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	m.links[link.ID] = link
}

func (m *MockRepository) GetManagedLinks(ctx context.Context, kind string, limit int) ([]domain.ManagedLink, error) {
	if m.GetLinksErr != nil {
		return nil, m.GetLinksErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var links []domain.ManagedLink
	for _, link := range m.links {
		if link.Kind == kind && len(links) < limit {
			links = append(links, link)
		}
	}
	return links, nil
}

func (m *MockRepository) GetManagedLink(ctx context.Context, linkID string) (*domain.ManagedLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetManagedLinkCalls++

	link, ok := m.links[linkID]
	if !ok {
		return nil, domain.ErrLinkNotFound
	}
	return &link, nil
}

func (m *MockRepository) GetLastSyncTime(ctx context.Context, linkID string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *time.Time
	for _, imp := range m.imports[linkID] {
		if imp.DeletedAt != nil {
			continue
		}
		if latest == nil || imp.CreatedAt.After(*latest) {
			t := imp.CreatedAt
			latest = &t
		}
	}
	return latest, nil
}

func (m *MockRepository) UpsertImport(ctx context.Context, linkID, remoteID string, properties map[string]interface{}) (bool, error) {
	if m.UpsertErr != nil {
		return false, m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, imp := range m.imports[linkID] {
		if imp.RemoteID == remoteID && imp.DeletedAt == nil {
			imp.Properties = properties
			imp.UpdatedAt = time.Now()
			return false, nil
		}
	}

	now := time.Now()
	m.imports[linkID] = append(m.imports[linkID], &domain.LinkImport{
		ID:            uuid.NewString(),
		ProfileLinkID: linkID,
		RemoteID:      remoteID,
		Properties:    properties,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	return true, nil
}

func (m *MockRepository) MarkDeletedImports(ctx context.Context, linkID string, activeRemoteIDs []string) (int64, error) {
	if m.MarkDeleteErr != nil {
		return 0, m.MarkDeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	active := make(map[string]bool, len(activeRemoteIDs))
	for _, id := range activeRemoteIDs {
		active[id] = true
	}

	var count int64
	now := time.Now()
	for _, imp := range m.imports[linkID] {
		if imp.DeletedAt == nil && !active[imp.RemoteID] {
			imp.DeletedAt = &now
			imp.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

func (m *MockRepository) GetActiveImports(ctx context.Context, linkID string) ([]domain.LinkImport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var imports []domain.LinkImport
	for _, imp := range m.imports[linkID] {
		if imp.DeletedAt == nil {
			imports = append(imports, *imp)
		}
	}
	return imports, nil
}

// AllImports returns every import row, deleted included, for assertions
func (m *MockRepository) AllImports(linkID string) []domain.LinkImport {
	m.mu.Lock()
	defer m.mu.Unlock()

	imports := make([]domain.LinkImport, 0, len(m.imports[linkID]))
	for _, imp := range m.imports[linkID] {
		imports = append(imports, *imp)
	}
	return imports
}

func (m *MockRepository) UpdateLinkTokens(ctx context.Context, linkID, accessToken string, expiresAt time.Time, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[linkID]
	if !ok {
		return domain.ErrLinkNotFound
	}
	link.AuthAccessToken = accessToken
	link.AuthAccessTokenExpiresAt = &expiresAt
	link.AuthRefreshToken = refreshToken
	m.links[linkID] = link
	return nil
}

// Link returns the stored link for assertions
func (m *MockRepository) Link(linkID string) (domain.ManagedLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[linkID]
	if !ok {
		return domain.ManagedLink{}, fmt.Errorf("no such link %q", linkID)
	}
	return link, nil
}

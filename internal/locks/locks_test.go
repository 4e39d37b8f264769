package locks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyweave/linksync/internal/domain"
)

func TestForWorker_AllKindsRegistered(t *testing.T) {
	for _, kind := range domain.ProviderKinds {
		id, err := ForWorker(kind)
		require.NoError(t, err, "kind %q must have a reserved lock", kind)
		assert.NotZero(t, id)
	}
}

func TestForWorker_UnknownKind(t *testing.T) {
	_, err := ForWorker("myspace")
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
}

// TestAll_NoCollisions guards against two workers sharing an advisory lock,
// which would silently serialize unrelated cycles.
func TestAll_NoCollisions(t *testing.T) {
	ids := All()
	require.Len(t, ids, len(domain.ProviderKinds))

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "lock ID %d reserved twice", id)
		seen[id] = true
	}
}

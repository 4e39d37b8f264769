// Package locks owns every Postgres advisory-lock ID used by the service.
// All lock users draw from this registry so IDs stay collision-free; never
// declare an advisory-lock literal anywhere else.
package locks

import (
	"fmt"

	"github.com/storyweave/linksync/internal/domain"
)

// Reserved advisory lock IDs. The 7100xx range belongs to sync workers.
const (
	GitHubSyncLock  int64 = 710001
	YouTubeSyncLock int64 = 710002
	SlidesSyncLock  int64 = 710003
)

var workerLocks = map[string]int64{
	domain.KindGitHub:  GitHubSyncLock,
	domain.KindYouTube: YouTubeSyncLock,
	domain.KindSlides:  SlidesSyncLock,
}

// ForWorker returns the reserved advisory lock ID for a sync worker kind.
func ForWorker(kind string) (int64, error) {
	id, ok := workerLocks[kind]
	if !ok {
		return 0, fmt.Errorf("%w: no lock reserved for kind %q", domain.ErrInvalidKind, kind)
	}
	return id, nil
}

// All returns every reserved lock ID, used to assert registry consistency.
func All() []int64 {
	ids := make([]int64, 0, len(workerLocks))
	for _, id := range workerLocks {
		ids = append(ids, id)
	}
	return ids
}

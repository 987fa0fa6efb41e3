package dashboard

import (
	"sync"

	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/models"
)

// pendingPlaceholder is shown while a profile has no completed generation.
const pendingPlaceholder = "Preparing your dashboard..."

// holder keeps the latest completed dashboard per profile. Writes carry a
// monotonic sequence token so a slow generation can never overwrite a newer
// one; readers always observe either the previous complete result or the new
// one, never a partial state.
type holder struct {
	mu      sync.RWMutex
	results map[string]*models.DashboardResult
	nextSeq uint64
}

func newHolder() *holder {
	return &holder{results: make(map[string]*models.DashboardResult)}
}

// nextToken allocates the sequence token for a new generation request.
func (h *holder) nextToken() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextSeq++
	return h.nextSeq
}

// publish installs a completed result unless a newer one is already present.
// It reports whether the result was installed.
func (h *holder) publish(profileID string, result *models.DashboardResult) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.results[profileID]; ok && prev.RequestSeq > result.RequestSeq {
		return false
	}
	h.results[profileID] = result
	return true
}

// snapshot returns the current view for a profile.
func (h *holder) snapshot(profileID string) interfaces.DashboardSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if result, ok := h.results[profileID]; ok {
		return interfaces.DashboardSnapshot{
			Status: interfaces.SnapshotReady,
			Result: result,
		}
	}
	return interfaces.DashboardSnapshot{
		Status:      interfaces.SnapshotPending,
		Placeholder: pendingPlaceholder,
	}
}

// drop removes a profile's cached result.
func (h *holder) drop(profileID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.results, profileID)
}

package repository

import (
	"context"
	"sync"
	"time"

	"slotbot/internal/models"
)

type pendingEntry struct {
	selection models.PendingSelection
	expiresAt time.Time
}

// MemoryPendingRegistry keeps pending slot selections in process memory.
// Entries expire after the configured TTL so abandoned dialogues do not
// accumulate. State is lost on restart, which is accepted behavior.
type MemoryPendingRegistry struct {
	mu      sync.Mutex
	entries map[int64]pendingEntry
	ttl     time.Duration
}

func NewMemoryPendingRegistry(ttl time.Duration) *MemoryPendingRegistry {
	return &MemoryPendingRegistry{
		entries: make(map[int64]pendingEntry),
		ttl:     ttl,
	}
}

func (r *MemoryPendingRegistry) Get(ctx context.Context, userID int64) (*models.PendingSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[userID]
	if !ok {
		return nil, nil
	}
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		delete(r.entries, userID)
		return nil, nil
	}
	sel := entry.selection
	return &sel, nil
}

func (r *MemoryPendingRegistry) Set(ctx context.Context, sel *models.PendingSelection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[sel.UserID] = pendingEntry{
		selection: *sel,
		expiresAt: time.Now().Add(r.ttl),
	}
	return nil
}

// Take removes and returns the user's selection in one step. Holding the
// mutex across lookup and delete keeps a concurrent cancel from leaving a
// stale selection behind to be consumed later.
func (r *MemoryPendingRegistry) Take(ctx context.Context, userID int64) (*models.PendingSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[userID]
	if !ok {
		return nil, nil
	}
	delete(r.entries, userID)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	sel := entry.selection
	return &sel, nil
}

func (r *MemoryPendingRegistry) Clear(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
	return nil
}

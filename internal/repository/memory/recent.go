// Package memory provides process-local repository implementations used when
// no external store is configured.
package memory

import (
	"context"
	"sync"

	"github.com/utafrali/addressbook/internal/domain"
)

// RecentSearchRepository keeps recent-search lists in a map. History does not
// survive a restart.
type RecentSearchRepository struct {
	mu    sync.Mutex
	lists map[string][]domain.RecentSearchEntry
}

// NewRecentSearchRepository creates an empty in-memory store.
func NewRecentSearchRepository() *RecentSearchRepository {
	return &RecentSearchRepository{lists: make(map[string][]domain.RecentSearchEntry)}
}

// Get returns a copy of the stored list.
func (r *RecentSearchRepository) Get(_ context.Context, userID string) ([]domain.RecentSearchEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.lists[userID]), nil
}

// Update applies fn while holding the store lock.
func (r *RecentSearchRepository) Update(
	_ context.Context,
	userID string,
	fn func([]domain.RecentSearchEntry) []domain.RecentSearchEntry,
) ([]domain.RecentSearchEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := clone(fn(clone(r.lists[userID])))
	r.lists[userID] = next
	return clone(next), nil
}

// Delete removes the stored list.
func (r *RecentSearchRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lists, userID)
	return nil
}

func clone(list []domain.RecentSearchEntry) []domain.RecentSearchEntry {
	out := make([]domain.RecentSearchEntry, len(list))
	copy(out, list)
	return out
}

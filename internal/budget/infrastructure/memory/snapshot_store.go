package memory

import (
	"context"
	"sync"

	budget "tryognik-dashboard/internal/budget/domain"
)

// SnapshotStore holds the single published snapshot for the process.
// The last completed Publish wins; readers get a copy of either the previous
// or the new publication.
type SnapshotStore struct {
	mu        sync.RWMutex
	current   budget.Publication
	published bool
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Publish replaces the current publication.
func (s *SnapshotStore) Publish(_ context.Context, publication budget.Publication) error {
	if publication.Snapshot.Monthly == nil {
		return budget.ErrNilSnapshot
	}

	stored := publication.Clone()
	s.mu.Lock()
	s.current = stored
	s.published = true
	s.mu.Unlock()
	return nil
}

// Current returns the current publication and whether one exists.
func (s *SnapshotStore) Current(_ context.Context) (budget.Publication, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.published {
		return budget.Publication{}, false, nil
	}
	return s.current.Clone(), true, nil
}

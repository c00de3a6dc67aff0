package memory

import (
	"context"
	"sync"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// ParameterFileStore is an in-memory implementation of
// storage.ParameterFileStore.
type ParameterFileStore struct {
	mu        sync.RWMutex
	snapshots []*domain.ParameterFileSnapshot
	nextID    int64
}

// NewParameterFileStore creates a new in-memory parameter file store.
func NewParameterFileStore() *ParameterFileStore {
	return &ParameterFileStore{nextID: 1}
}

// Save appends a snapshot of the raw parameter file.
func (s *ParameterFileStore) Save(_ context.Context, snapshot *domain.ParameterFileSnapshot) error {
	if snapshot == nil || snapshot.Content == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *snapshot
	copy.ID = s.nextID
	s.nextID++
	s.snapshots = append(s.snapshots, &copy)
	snapshot.ID = copy.ID
	return nil
}

// GetLatest retrieves the most recently saved snapshot.
func (s *ParameterFileStore) GetLatest(_ context.Context) (*domain.ParameterFileSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return nil, storage.ErrNotFound
	}

	copy := *s.snapshots[len(s.snapshots)-1]
	return &copy, nil
}

var _ storage.ParameterFileStore = (*ParameterFileStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

type noteKey struct {
	year       int
	protection float64
}

// NoteParameterStore is an in-memory implementation of
// storage.NoteParameterStore.
type NoteParameterStore struct {
	mu   sync.RWMutex
	data map[noteKey]*domain.NoteParameters
}

// NewNoteParameterStore creates a new in-memory note parameter store.
func NewNoteParameterStore() *NoteParameterStore {
	return &NoteParameterStore{
		data: make(map[noteKey]*domain.NoteParameters),
	}
}

// UpsertBulk writes note parameters keyed by (year, protection_level).
func (s *NoteParameterStore) UpsertBulk(_ context.Context, params []*domain.NoteParameters) error {
	for _, p := range params {
		if p == nil || p.Year <= 0 || !p.NoteType.Valid() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range params {
		copy := *p
		s.data[noteKey{p.Year, p.ProtectionLevel}] = &copy
	}
	return nil
}

// GetAll retrieves every row ordered by year, protection_level ASC.
func (s *NoteParameterStore) GetAll(_ context.Context) ([]*domain.NoteParameters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.NoteParameters, 0, len(s.data))
	for _, p := range s.data {
		copy := *p
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].ProtectionLevel < result[j].ProtectionLevel
	})

	return result, nil
}

var _ storage.NoteParameterStore = (*NoteParameterStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

type stateKey struct {
	scenarioID string
	yearIndex  int
}

// YearlyStateStore is an in-memory implementation of storage.YearlyStateStore.
type YearlyStateStore struct {
	mu   sync.RWMutex
	data map[stateKey]*domain.YearlyState
}

// NewYearlyStateStore creates a new in-memory yearly state store.
func NewYearlyStateStore() *YearlyStateStore {
	return &YearlyStateStore{
		data: make(map[stateKey]*domain.YearlyState),
	}
}

// UpsertBulk writes a scenario's full trajectory atomically, keyed by
// (scenario_id, year_index).
func (s *YearlyStateStore) UpsertBulk(_ context.Context, states []*domain.YearlyState) error {
	if len(states) == 0 {
		return nil
	}

	for _, st := range states {
		if st == nil || st.ScenarioID == "" || st.YearIndex < 0 {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range states {
		copy := *st
		s.data[stateKey{st.ScenarioID, st.YearIndex}] = &copy
	}
	return nil
}

// GetByScenarioID retrieves a trajectory ordered by year_index ASC.
func (s *YearlyStateStore) GetByScenarioID(_ context.Context, scenarioID string) ([]*domain.YearlyState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.YearlyState
	for key, st := range s.data {
		if key.scenarioID == scenarioID {
			copy := *st
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].YearIndex < result[j].YearIndex
	})

	return result, nil
}

var _ storage.YearlyStateStore = (*YearlyStateStore)(nil)

// Package memory provides in-memory implementations of the storage
// interfaces, used as test doubles and for dry runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// ScenarioStore is an in-memory implementation of storage.ScenarioStore.
type ScenarioStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Scenario // keyed by scenario_id
}

// NewScenarioStore creates a new in-memory scenario store.
func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{
		data: make(map[string]*domain.Scenario),
	}
}

// Upsert writes a scenario descriptor keyed by scenario_id.
func (s *ScenarioStore) Upsert(_ context.Context, sc *domain.Scenario) error {
	if sc == nil || sc.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *sc
	s.data[sc.ScenarioID] = &copy
	return nil
}

// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) GetByID(_ context.Context, scenarioID string) (*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, exists := s.data[scenarioID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *sc
	return &copy, nil
}

// Query retrieves scenarios matching the filter, ordered by scenario_id.
func (s *ScenarioStore) Query(_ context.Context, filter storage.ScenarioFilter) ([]*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Scenario
	for _, sc := range s.data {
		if filter.Matches(sc, nil) {
			copy := *sc
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ScenarioID < result[j].ScenarioID
	})

	return result, nil
}

// get returns the stored scenario without copying; for intra-package joins.
func (s *ScenarioStore) get(scenarioID string) (*domain.Scenario, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, exists := s.data[scenarioID]
	return sc, exists
}

var _ storage.ScenarioStore = (*ScenarioStore)(nil)

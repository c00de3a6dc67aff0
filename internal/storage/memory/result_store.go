package memory

import (
	"context"
	"sort"
	"sync"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// ResultStore is an in-memory implementation of storage.ResultStore. Query
// joins against a ScenarioStore, mirroring the relational join the postgres
// implementation performs.
type ResultStore struct {
	mu        sync.RWMutex
	data      map[string]*domain.SimulationResult // keyed by scenario_id
	scenarios *ScenarioStore
}

// NewResultStore creates a new in-memory result store joined against the
// given scenario store.
func NewResultStore(scenarios *ScenarioStore) *ResultStore {
	return &ResultStore{
		data:      make(map[string]*domain.SimulationResult),
		scenarios: scenarios,
	}
}

// Upsert writes a summary result keyed by scenario_id.
func (s *ResultStore) Upsert(_ context.Context, r *domain.SimulationResult) error {
	if r == nil || r.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := copyResult(r)
	s.data[r.ScenarioID] = copy
	return nil
}

// GetByScenarioID retrieves a result by scenario ID. Returns ErrNotFound if
// not exists.
func (s *ResultStore) GetByScenarioID(_ context.Context, scenarioID string) (*domain.SimulationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[scenarioID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyResult(r), nil
}

// Query retrieves result rows joined with their scenario descriptors.
// Results whose scenario was never persisted are skipped, matching the inner
// join the postgres implementation uses.
func (s *ResultStore) Query(_ context.Context, filter storage.ScenarioFilter) ([]*storage.ResultRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*storage.ResultRow
	for id, r := range s.data {
		sc, exists := s.scenarios.get(id)
		if !exists {
			continue
		}
		if !filter.Matches(sc, r) {
			continue
		}
		scCopy := *sc
		rows = append(rows, &storage.ResultRow{
			Scenario: &scCopy,
			Result:   copyResult(r),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Result.ScenarioID < rows[j].Result.ScenarioID
	})

	return rows, nil
}

// copyResult deep-copies a result including its pointer fields.
func copyResult(r *domain.SimulationResult) *domain.SimulationResult {
	copy := *r
	if r.CAGR != nil {
		v := *r.CAGR
		copy.CAGR = &v
	}
	if r.FailureReason != nil {
		v := *r.FailureReason
		copy.FailureReason = &v
	}
	return &copy
}

var _ storage.ResultStore = (*ResultStore)(nil)

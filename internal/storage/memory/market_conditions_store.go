package memory

import (
	"context"
	"sort"
	"sync"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// MarketConditionsStore is an in-memory implementation of
// storage.MarketConditionsStore.
type MarketConditionsStore struct {
	mu   sync.RWMutex
	data map[int]*domain.YearlyMarketRecord // keyed by year
}

// NewMarketConditionsStore creates a new in-memory market conditions store.
func NewMarketConditionsStore() *MarketConditionsStore {
	return &MarketConditionsStore{
		data: make(map[int]*domain.YearlyMarketRecord),
	}
}

// UpsertBulk writes yearly market records keyed by year.
func (s *MarketConditionsStore) UpsertBulk(_ context.Context, records []*domain.YearlyMarketRecord) error {
	for _, r := range records {
		if r == nil || r.Year <= 0 {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		copy := *r
		s.data[r.Year] = &copy
	}
	return nil
}

// GetAll retrieves every record ordered by year ASC.
func (s *MarketConditionsStore) GetAll(_ context.Context) ([]*domain.YearlyMarketRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.YearlyMarketRecord, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Year < result[j].Year
	})

	return result, nil
}

var _ storage.MarketConditionsStore = (*MarketConditionsStore)(nil)

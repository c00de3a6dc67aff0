package storage

import (
	"context"

	"portfolio-note-lab/internal/domain"
)

// ScenarioFilter narrows reads to scenarios matching every set field. Nil
// fields match everything, so the zero value selects all rows.
type ScenarioFilter struct {
	StartYear        *int
	HorizonYears     *int
	AllocationName   *string
	ProtectionLevel  *float64
	NoteType         *domain.NoteType
	WithdrawalMethod *domain.WithdrawalMethod
	WithdrawalRate   *float64
	Completed        *bool
}

// Matches reports whether the scenario (and, when the Completed field is set,
// its result) satisfies the filter.
func (f ScenarioFilter) Matches(s *domain.Scenario, r *domain.SimulationResult) bool {
	if f.StartYear != nil && s.StartYear != *f.StartYear {
		return false
	}
	if f.HorizonYears != nil && s.HorizonYears != *f.HorizonYears {
		return false
	}
	if f.AllocationName != nil && s.AllocationName != *f.AllocationName {
		return false
	}
	if f.ProtectionLevel != nil && s.ProtectionLevel != *f.ProtectionLevel {
		return false
	}
	if f.NoteType != nil && s.NoteType != *f.NoteType {
		return false
	}
	if f.WithdrawalMethod != nil && s.Withdrawal.Method != *f.WithdrawalMethod {
		return false
	}
	if f.WithdrawalRate != nil && s.Withdrawal.Rate != *f.WithdrawalRate {
		return false
	}
	if f.Completed != nil {
		if r == nil || r.Completed != *f.Completed {
			return false
		}
	}
	return true
}

// ResultRow joins a scenario descriptor with its summary result for
// downstream aggregation and export.
type ResultRow struct {
	Scenario *domain.Scenario
	Result   *domain.SimulationResult
}

// ScenarioStore provides access to scenarios storage.
type ScenarioStore interface {
	// Upsert writes a scenario descriptor keyed by scenario_id.
	// Re-writing an existing ID replaces the row.
	Upsert(ctx context.Context, s *domain.Scenario) error

	// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, scenarioID string) (*domain.Scenario, error)

	// Query retrieves scenarios matching the filter, ordered by scenario_id.
	Query(ctx context.Context, filter ScenarioFilter) ([]*domain.Scenario, error)
}

// YearlyStateStore provides access to yearly_states storage.
type YearlyStateStore interface {
	// UpsertBulk writes a scenario's full trajectory atomically, keyed by
	// (scenario_id, year_index). Re-running a scenario replaces its rows.
	UpsertBulk(ctx context.Context, states []*domain.YearlyState) error

	// GetByScenarioID retrieves a trajectory ordered by year_index ASC.
	GetByScenarioID(ctx context.Context, scenarioID string) ([]*domain.YearlyState, error)
}

// ResultStore provides access to results storage.
type ResultStore interface {
	// Upsert writes a summary result keyed by scenario_id.
	Upsert(ctx context.Context, r *domain.SimulationResult) error

	// GetByScenarioID retrieves a result by scenario ID. Returns
	// ErrNotFound if not exists; resume checks rely on that distinction.
	GetByScenarioID(ctx context.Context, scenarioID string) (*domain.SimulationResult, error)

	// Query retrieves result rows joined with their scenario descriptors,
	// filtered by any subset of scenario parameters, ordered by scenario_id.
	Query(ctx context.Context, filter ScenarioFilter) ([]*ResultRow, error)
}

// MarketConditionsStore provides access to market_conditions storage.
type MarketConditionsStore interface {
	// UpsertBulk writes yearly market records keyed by year.
	UpsertBulk(ctx context.Context, records []*domain.YearlyMarketRecord) error

	// GetAll retrieves every record ordered by year ASC.
	GetAll(ctx context.Context) ([]*domain.YearlyMarketRecord, error)
}

// NoteParameterStore provides access to note_parameters storage.
type NoteParameterStore interface {
	// UpsertBulk writes note parameters keyed by (year, protection_level).
	UpsertBulk(ctx context.Context, params []*domain.NoteParameters) error

	// GetAll retrieves every row ordered by year, protection_level ASC.
	GetAll(ctx context.Context) ([]*domain.NoteParameters, error)
}

// ParameterFileStore provides access to parameter_files storage.
type ParameterFileStore interface {
	// Save appends a snapshot of the raw parameter file.
	Save(ctx context.Context, snapshot *domain.ParameterFileSnapshot) error

	// GetLatest retrieves the most recently saved snapshot.
	// Returns ErrNotFound when none has been saved.
	GetLatest(ctx context.Context) (*domain.ParameterFileSnapshot, error)
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// ScenarioStore implements storage.ScenarioStore using PostgreSQL.
type ScenarioStore struct {
	pool *Pool
}

// NewScenarioStore creates a new ScenarioStore.
func NewScenarioStore(pool *Pool) *ScenarioStore {
	return &ScenarioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScenarioStore = (*ScenarioStore)(nil)

const scenarioColumns = `
	scenario_id, start_year, horizon_years, allocation_name,
	equity_weight, note_weight, bond_weight,
	protection_level, note_type,
	withdrawal_method, withdrawal_rate, inflation_adjusted, initial_age,
	initial_value, rebalance_frequency, annual_contribution
`

// Upsert writes a scenario descriptor keyed by scenario_id.
func (s *ScenarioStore) Upsert(ctx context.Context, sc *domain.Scenario) error {
	if sc == nil || sc.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO scenarios (` + scenarioColumns + `) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9,
			$10, $11, $12, $13,
			$14, $15, $16
		)
		ON CONFLICT (scenario_id) DO UPDATE SET
			start_year = EXCLUDED.start_year,
			horizon_years = EXCLUDED.horizon_years,
			allocation_name = EXCLUDED.allocation_name,
			equity_weight = EXCLUDED.equity_weight,
			note_weight = EXCLUDED.note_weight,
			bond_weight = EXCLUDED.bond_weight,
			protection_level = EXCLUDED.protection_level,
			note_type = EXCLUDED.note_type,
			withdrawal_method = EXCLUDED.withdrawal_method,
			withdrawal_rate = EXCLUDED.withdrawal_rate,
			inflation_adjusted = EXCLUDED.inflation_adjusted,
			initial_age = EXCLUDED.initial_age,
			initial_value = EXCLUDED.initial_value,
			rebalance_frequency = EXCLUDED.rebalance_frequency,
			annual_contribution = EXCLUDED.annual_contribution
	`

	_, err := s.pool.Exec(ctx, query,
		sc.ScenarioID, sc.StartYear, sc.HorizonYears, sc.AllocationName,
		sc.Allocation.Equity, sc.Allocation.Notes, sc.Allocation.Bonds,
		sc.ProtectionLevel, string(sc.NoteType),
		string(sc.Withdrawal.Method), sc.Withdrawal.Rate, sc.Withdrawal.InflationAdjusted, sc.Withdrawal.InitialAge,
		sc.InitialValue, string(sc.RebalanceFrequency), sc.AnnualContribution,
	)
	if err != nil {
		return fmt.Errorf("upsert scenario: %w", err)
	}
	return nil
}

// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) GetByID(ctx context.Context, scenarioID string) (*domain.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE scenario_id = $1`

	row := s.pool.QueryRow(ctx, query, scenarioID)
	sc, err := scanScenario(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get scenario by id: %w", err)
	}
	return sc, nil
}

// Query retrieves scenarios matching the filter, ordered by scenario_id.
func (s *ScenarioStore) Query(ctx context.Context, filter storage.ScenarioFilter) ([]*domain.Scenario, error) {
	where, args := scenarioFilterClauses(filter, "scenarios")
	query := `SELECT ` + scenarioColumns + ` FROM scenarios` + where + ` ORDER BY scenario_id ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	var result []*domain.Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario row: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenario rows: %w", err)
	}
	return result, nil
}

// scenarioFilterClauses renders the filter's set fields into a WHERE clause
// against the given table alias. The Completed field is handled by the
// result store's join, not here.
func scenarioFilterClauses(filter storage.ScenarioFilter, table string) (string, []any) {
	var clauses []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s.%s = $%d", table, column, len(args)))
	}

	if filter.StartYear != nil {
		add("start_year", *filter.StartYear)
	}
	if filter.HorizonYears != nil {
		add("horizon_years", *filter.HorizonYears)
	}
	if filter.AllocationName != nil {
		add("allocation_name", *filter.AllocationName)
	}
	if filter.ProtectionLevel != nil {
		add("protection_level", *filter.ProtectionLevel)
	}
	if filter.NoteType != nil {
		add("note_type", string(*filter.NoteType))
	}
	if filter.WithdrawalMethod != nil {
		add("withdrawal_method", string(*filter.WithdrawalMethod))
	}
	if filter.WithdrawalRate != nil {
		add("withdrawal_rate", *filter.WithdrawalRate)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// scanScenario scans a single row into a Scenario.
func scanScenario(row pgx.Row) (*domain.Scenario, error) {
	var sc domain.Scenario
	var noteType, method, frequency string

	err := row.Scan(
		&sc.ScenarioID, &sc.StartYear, &sc.HorizonYears, &sc.AllocationName,
		&sc.Allocation.Equity, &sc.Allocation.Notes, &sc.Allocation.Bonds,
		&sc.ProtectionLevel, &noteType,
		&method, &sc.Withdrawal.Rate, &sc.Withdrawal.InflationAdjusted, &sc.Withdrawal.InitialAge,
		&sc.InitialValue, &frequency, &sc.AnnualContribution,
	)
	if err != nil {
		return nil, err
	}

	sc.NoteType = domain.NoteType(noteType)
	sc.Withdrawal.Method = domain.WithdrawalMethod(method)
	sc.RebalanceFrequency = domain.RebalanceFrequency(frequency)
	return &sc, nil
}

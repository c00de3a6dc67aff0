package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// ResultStore implements storage.ResultStore using PostgreSQL.
type ResultStore struct {
	pool *Pool
}

// NewResultStore creates a new ResultStore.
func NewResultStore(pool *Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

const resultColumns = `
	scenario_id, terminal_value, cagr, volatility,
	max_drawdown, sharpe_ratio, survival_rate,
	completed, terminal_reason, failure_reason
`

// Upsert writes a summary result keyed by scenario_id.
func (s *ResultStore) Upsert(ctx context.Context, r *domain.SimulationResult) error {
	if r == nil || r.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO results (` + resultColumns + `) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10
		)
		ON CONFLICT (scenario_id) DO UPDATE SET
			terminal_value = EXCLUDED.terminal_value,
			cagr = EXCLUDED.cagr,
			volatility = EXCLUDED.volatility,
			max_drawdown = EXCLUDED.max_drawdown,
			sharpe_ratio = EXCLUDED.sharpe_ratio,
			survival_rate = EXCLUDED.survival_rate,
			completed = EXCLUDED.completed,
			terminal_reason = EXCLUDED.terminal_reason,
			failure_reason = EXCLUDED.failure_reason
	`

	_, err := s.pool.Exec(ctx, query,
		r.ScenarioID, r.TerminalValue, r.CAGR, r.Volatility,
		r.MaxDrawdown, r.SharpeRatio, r.SurvivalRate,
		r.Completed, string(r.Reason), r.FailureReason,
	)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// GetByScenarioID retrieves a result by scenario ID. Returns ErrNotFound if
// not exists.
func (s *ResultStore) GetByScenarioID(ctx context.Context, scenarioID string) (*domain.SimulationResult, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE scenario_id = $1`

	row := s.pool.QueryRow(ctx, query, scenarioID)
	r, err := scanResult(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get result by scenario id: %w", err)
	}
	return r, nil
}

// Query retrieves result rows joined with their scenario descriptors,
// filtered by any subset of scenario parameters.
func (s *ResultStore) Query(ctx context.Context, filter storage.ScenarioFilter) ([]*storage.ResultRow, error) {
	where, args := scenarioFilterClauses(filter, "s")
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		cond := fmt.Sprintf("r.completed = $%d", len(args))
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	query := `
		SELECT
			s.scenario_id, s.start_year, s.horizon_years, s.allocation_name,
			s.equity_weight, s.note_weight, s.bond_weight,
			s.protection_level, s.note_type,
			s.withdrawal_method, s.withdrawal_rate, s.inflation_adjusted, s.initial_age,
			s.initial_value, s.rebalance_frequency, s.annual_contribution,
			r.terminal_value, r.cagr, r.volatility,
			r.max_drawdown, r.sharpe_ratio, r.survival_rate,
			r.completed, r.terminal_reason, r.failure_reason
		FROM results r
		JOIN scenarios s ON s.scenario_id = r.scenario_id` + where + `
		ORDER BY s.scenario_id ASC
	`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var result []*storage.ResultRow
	for rows.Next() {
		var sc domain.Scenario
		var r domain.SimulationResult
		var noteType, method, frequency, reason string

		err := rows.Scan(
			&sc.ScenarioID, &sc.StartYear, &sc.HorizonYears, &sc.AllocationName,
			&sc.Allocation.Equity, &sc.Allocation.Notes, &sc.Allocation.Bonds,
			&sc.ProtectionLevel, &noteType,
			&method, &sc.Withdrawal.Rate, &sc.Withdrawal.InflationAdjusted, &sc.Withdrawal.InitialAge,
			&sc.InitialValue, &frequency, &sc.AnnualContribution,
			&r.TerminalValue, &r.CAGR, &r.Volatility,
			&r.MaxDrawdown, &r.SharpeRatio, &r.SurvivalRate,
			&r.Completed, &reason, &r.FailureReason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}

		sc.NoteType = domain.NoteType(noteType)
		sc.Withdrawal.Method = domain.WithdrawalMethod(method)
		sc.RebalanceFrequency = domain.RebalanceFrequency(frequency)
		r.ScenarioID = sc.ScenarioID
		r.Reason = domain.TerminalReason(reason)

		result = append(result, &storage.ResultRow{Scenario: &sc, Result: &r})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return result, nil
}

// scanResult scans a single row into a SimulationResult.
func scanResult(row pgx.Row) (*domain.SimulationResult, error) {
	var r domain.SimulationResult
	var reason string

	err := row.Scan(
		&r.ScenarioID, &r.TerminalValue, &r.CAGR, &r.Volatility,
		&r.MaxDrawdown, &r.SharpeRatio, &r.SurvivalRate,
		&r.Completed, &reason, &r.FailureReason,
	)
	if err != nil {
		return nil, err
	}

	r.Reason = domain.TerminalReason(reason)
	return &r, nil
}

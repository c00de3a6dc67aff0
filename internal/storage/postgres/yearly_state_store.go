package postgres

import (
	"context"
	"fmt"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// YearlyStateStore implements storage.YearlyStateStore using PostgreSQL.
type YearlyStateStore struct {
	pool *Pool
}

// NewYearlyStateStore creates a new YearlyStateStore.
func NewYearlyStateStore(pool *Pool) *YearlyStateStore {
	return &YearlyStateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.YearlyStateStore = (*YearlyStateStore)(nil)

const yearlyStateColumns = `
	scenario_id, year_index, calendar_year,
	equity_value, note_value, bond_value, total_value,
	withdrawal_amount, contribution_amount,
	equity_return, note_return, bond_return, portfolio_return,
	is_ruined
`

// UpsertBulk writes a scenario's full trajectory atomically, keyed by
// (scenario_id, year_index).
func (s *YearlyStateStore) UpsertBulk(ctx context.Context, states []*domain.YearlyState) error {
	if len(states) == 0 {
		return nil
	}
	for _, st := range states {
		if st == nil || st.ScenarioID == "" || st.YearIndex < 0 {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO yearly_states (` + yearlyStateColumns + `) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9,
			$10, $11, $12, $13,
			$14
		)
		ON CONFLICT (scenario_id, year_index) DO UPDATE SET
			calendar_year = EXCLUDED.calendar_year,
			equity_value = EXCLUDED.equity_value,
			note_value = EXCLUDED.note_value,
			bond_value = EXCLUDED.bond_value,
			total_value = EXCLUDED.total_value,
			withdrawal_amount = EXCLUDED.withdrawal_amount,
			contribution_amount = EXCLUDED.contribution_amount,
			equity_return = EXCLUDED.equity_return,
			note_return = EXCLUDED.note_return,
			bond_return = EXCLUDED.bond_return,
			portfolio_return = EXCLUDED.portfolio_return,
			is_ruined = EXCLUDED.is_ruined
	`

	for _, st := range states {
		_, err := tx.Exec(ctx, query,
			st.ScenarioID, st.YearIndex, st.CalendarYear,
			st.EquityValue, st.NoteValue, st.BondValue, st.TotalValue,
			st.WithdrawalAmount, st.ContributionAmount,
			st.EquityReturn, st.NoteReturn, st.BondReturn, st.PortfolioReturn,
			st.IsRuined,
		)
		if err != nil {
			return fmt.Errorf("upsert yearly state: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByScenarioID retrieves a trajectory ordered by year_index ASC.
func (s *YearlyStateStore) GetByScenarioID(ctx context.Context, scenarioID string) ([]*domain.YearlyState, error) {
	query := `SELECT ` + yearlyStateColumns + ` FROM yearly_states WHERE scenario_id = $1 ORDER BY year_index ASC`

	rows, err := s.pool.Query(ctx, query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("get yearly states by scenario id: %w", err)
	}
	defer rows.Close()

	var states []*domain.YearlyState
	for rows.Next() {
		var st domain.YearlyState
		err := rows.Scan(
			&st.ScenarioID, &st.YearIndex, &st.CalendarYear,
			&st.EquityValue, &st.NoteValue, &st.BondValue, &st.TotalValue,
			&st.WithdrawalAmount, &st.ContributionAmount,
			&st.EquityReturn, &st.NoteReturn, &st.BondReturn, &st.PortfolioReturn,
			&st.IsRuined,
		)
		if err != nil {
			return nil, fmt.Errorf("scan yearly state row: %w", err)
		}
		states = append(states, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate yearly state rows: %w", err)
	}
	return states, nil
}

package postgres

import (
	"context"
	"fmt"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// MarketConditionsStore implements storage.MarketConditionsStore using
// PostgreSQL.
type MarketConditionsStore struct {
	pool *Pool
}

// NewMarketConditionsStore creates a new MarketConditionsStore.
func NewMarketConditionsStore(pool *Pool) *MarketConditionsStore {
	return &MarketConditionsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketConditionsStore = (*MarketConditionsStore)(nil)

// UpsertBulk writes yearly market records keyed by year.
func (s *MarketConditionsStore) UpsertBulk(ctx context.Context, records []*domain.YearlyMarketRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r == nil || r.Year <= 0 {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO market_conditions (
			year, equity_return, bond_return, risk_free_rate,
			volatility, funding_spread, dividend_yield, inflation_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (year) DO UPDATE SET
			equity_return = EXCLUDED.equity_return,
			bond_return = EXCLUDED.bond_return,
			risk_free_rate = EXCLUDED.risk_free_rate,
			volatility = EXCLUDED.volatility,
			funding_spread = EXCLUDED.funding_spread,
			dividend_yield = EXCLUDED.dividend_yield,
			inflation_rate = EXCLUDED.inflation_rate
	`

	for _, r := range records {
		_, err := tx.Exec(ctx, query,
			r.Year, r.EquityReturn, r.BondReturn, r.RiskFreeRate,
			r.Volatility, r.FundingSpread, r.DividendYield, r.InflationRate,
		)
		if err != nil {
			return fmt.Errorf("upsert market conditions: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every record ordered by year ASC.
func (s *MarketConditionsStore) GetAll(ctx context.Context) ([]*domain.YearlyMarketRecord, error) {
	query := `
		SELECT
			year, equity_return, bond_return, risk_free_rate,
			volatility, funding_spread, dividend_yield, inflation_rate
		FROM market_conditions
		ORDER BY year ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all market conditions: %w", err)
	}
	defer rows.Close()

	var records []*domain.YearlyMarketRecord
	for rows.Next() {
		var r domain.YearlyMarketRecord
		err := rows.Scan(
			&r.Year, &r.EquityReturn, &r.BondReturn, &r.RiskFreeRate,
			&r.Volatility, &r.FundingSpread, &r.DividendYield, &r.InflationRate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan market conditions row: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market conditions rows: %w", err)
	}
	return records, nil
}

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage/postgres"
)

func TestYearlyStateStore_UpsertBulkAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewYearlyStateStore(pool)
	ctx := context.Background()

	states := []*domain.YearlyState{
		{
			ScenarioID: "traj-001", YearIndex: 1, CalendarYear: 1981,
			EquityValue: 430_000, NoteValue: 320_000, BondValue: 310_000, TotalValue: 1_060_000,
			WithdrawalAmount: 40_000, EquityReturn: 0.12, NoteReturn: 0.08, BondReturn: 0.03,
			PortfolioReturn: 0.082,
		},
		{
			ScenarioID: "traj-001", YearIndex: 0, CalendarYear: 1980,
			EquityValue: 410_000, NoteValue: 305_000, BondValue: 300_000, TotalValue: 1_015_000,
			WithdrawalAmount: 40_000, EquityReturn: 0.06, NoteReturn: 0.04, BondReturn: 0.02,
			PortfolioReturn: 0.044,
		},
	}
	require.NoError(t, store.UpsertBulk(ctx, states))

	got, err := store.GetByScenarioID(ctx, "traj-001")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].YearIndex)
	assert.Equal(t, 1, got[1].YearIndex)
	assert.Equal(t, 1_015_000.0, got[0].TotalValue)
	assert.Equal(t, 0.082, got[1].PortfolioReturn)
}

func TestYearlyStateStore_RerunReplacesTrajectory(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewYearlyStateStore(pool)
	ctx := context.Background()

	first := []*domain.YearlyState{
		{ScenarioID: "traj-rerun", YearIndex: 0, CalendarYear: 1980, TotalValue: 1_000_000},
	}
	require.NoError(t, store.UpsertBulk(ctx, first))

	second := []*domain.YearlyState{
		{ScenarioID: "traj-rerun", YearIndex: 0, CalendarYear: 1980, TotalValue: 1_100_000, IsRuined: false},
	}
	require.NoError(t, store.UpsertBulk(ctx, second))

	got, err := store.GetByScenarioID(ctx, "traj-rerun")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1_100_000.0, got[0].TotalValue)
}

func TestYearlyStateStore_RuinFlagPersists(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewYearlyStateStore(pool)
	ctx := context.Background()

	states := []*domain.YearlyState{
		{ScenarioID: "traj-ruin", YearIndex: 0, CalendarYear: 1980, TotalValue: 400_000},
		{ScenarioID: "traj-ruin", YearIndex: 1, CalendarYear: 1981, TotalValue: 0, IsRuined: true},
	}
	require.NoError(t, store.UpsertBulk(ctx, states))

	got, err := store.GetByScenarioID(ctx, "traj-ruin")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].IsRuined)
	assert.True(t, got[1].IsRuined)
}

func TestYearlyStateStore_EmptyScenario(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewYearlyStateStore(pool)

	got, err := store.GetByScenarioID(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, got)
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage/migrations"
	"portfolio-note-lab/internal/storage/postgres"
)

// setupTestDB creates a PostgreSQL container for testing and applies the
// embedded migrations. Returns a cleanup function that must be called after
// tests complete.
func setupTestDB(t *testing.T) (*postgres.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := pgcontainer.Run(ctx, "postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("test"),
		pgcontainer.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool), "failed to apply migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// testScenario builds a scenario descriptor with distinguishable values.
func testScenario(id string, startYear int) *domain.Scenario {
	return &domain.Scenario{
		ScenarioID:      id,
		StartYear:       startYear,
		HorizonYears:    30,
		AllocationName:  "balanced",
		Allocation:      domain.Allocation{Equity: 0.4, Notes: 0.3, Bonds: 0.3},
		ProtectionLevel: 0.10,
		NoteType:        domain.NoteTypeBuffered,
		Withdrawal: domain.WithdrawalConfig{
			Method: domain.WithdrawalFixedPercent,
			Rate:   0.04,
		},
		InitialValue:       1_000_000,
		RebalanceFrequency: domain.RebalanceYearly,
	}
}

// ptr is a helper to create pointers to values.
func ptr[T any](v T) *T {
	return &v
}

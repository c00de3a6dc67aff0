package memory

import (
	"context"
	"errors"
	"testing"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

func testResult(id string, completed bool) *domain.SimulationResult {
	cagr := 0.052
	return &domain.SimulationResult{
		ScenarioID:    id,
		TerminalValue: 2_400_000,
		CAGR:          &cagr,
		Volatility:    0.11,
		MaxDrawdown:   0.32,
		SharpeRatio:   0.45,
		SurvivalRate:  1.0,
		Completed:     completed,
		Reason:        domain.TerminalHorizonReached,
	}
}

func TestResultStore_UpsertAndGet(t *testing.T) {
	scenarios := NewScenarioStore()
	store := NewResultStore(scenarios)
	ctx := context.Background()

	if err := store.Upsert(ctx, testResult("s1", true)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByScenarioID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByScenarioID failed: %v", err)
	}
	if got.TerminalValue != 2_400_000 {
		t.Errorf("TerminalValue mismatch: got %f", got.TerminalValue)
	}
	if got.CAGR == nil || *got.CAGR != 0.052 {
		t.Errorf("CAGR mismatch: got %v", got.CAGR)
	}
}

func TestResultStore_UpsertIsIdempotent(t *testing.T) {
	scenarios := NewScenarioStore()
	store := NewResultStore(scenarios)
	ctx := context.Background()

	if err := scenarios.Upsert(ctx, testScenario("s1", 1980)); err != nil {
		t.Fatalf("scenario Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, testResult("s1", true)); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, testResult("s1", true)); err != nil {
		t.Fatalf("repeated Upsert must succeed: %v", err)
	}

	rows, err := store.Query(ctx, storage.ScenarioFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected exactly one row after repeated upsert, got %d", len(rows))
	}
}

func TestResultStore_NotFound(t *testing.T) {
	store := NewResultStore(NewScenarioStore())

	_, err := store.GetByScenarioID(context.Background(), "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestResultStore_QueryJoinsScenarios(t *testing.T) {
	scenarios := NewScenarioStore()
	store := NewResultStore(scenarios)
	ctx := context.Background()

	sc := testScenario("s1", 1980)
	if err := scenarios.Upsert(ctx, sc); err != nil {
		t.Fatalf("scenario Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, testResult("s1", true)); err != nil {
		t.Fatalf("result Upsert failed: %v", err)
	}
	// Orphan result without a persisted scenario.
	if err := store.Upsert(ctx, testResult("s2", true)); err != nil {
		t.Fatalf("result Upsert failed: %v", err)
	}

	rows, err := store.Query(ctx, storage.ScenarioFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected orphan result to be excluded, got %d rows", len(rows))
	}
	if rows[0].Scenario.StartYear != 1980 {
		t.Errorf("joined scenario mismatch: %+v", rows[0].Scenario)
	}
}

func TestResultStore_QueryByCompleted(t *testing.T) {
	scenarios := NewScenarioStore()
	store := NewResultStore(scenarios)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2"} {
		if err := scenarios.Upsert(ctx, testScenario(id, 1980)); err != nil {
			t.Fatalf("scenario Upsert failed: %v", err)
		}
	}
	if err := store.Upsert(ctx, testResult("s1", true)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	failed := testResult("s2", false)
	reason := "missing market data"
	failed.FailureReason = &reason
	if err := store.Upsert(ctx, failed); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	completed := false
	rows, err := store.Query(ctx, storage.ScenarioFilter{Completed: &completed})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Result.ScenarioID != "s2" {
		t.Fatalf("expected only the failed result, got %d rows", len(rows))
	}
	if rows[0].Result.FailureReason == nil || *rows[0].Result.FailureReason != reason {
		t.Errorf("failure reason not preserved: %v", rows[0].Result.FailureReason)
	}
}

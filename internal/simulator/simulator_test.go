package simulator

import (
	"context"
	"errors"
	"math"
	"testing"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/idhash"
	"portfolio-note-lab/internal/marketdata"
)

const tolerance = 1e-6

// flatMarket builds a store where every year from start to start+n-1 has the
// given returns.
func flatMarket(start, n int, equityRet, bondRet, riskFree float64) *marketdata.Store {
	records := make([]domain.YearlyMarketRecord, n)
	for i := 0; i < n; i++ {
		records[i] = domain.YearlyMarketRecord{
			Year:          start + i,
			EquityReturn:  equityRet,
			BondReturn:    bondRet,
			RiskFreeRate:  riskFree,
			Volatility:    0.18,
			FundingSpread: 0.015,
			DividendYield: 0.02,
			InflationRate: 0.02,
		}
	}
	return marketdata.NewStore(records)
}

// noteTableWithRate builds a note table where every year from start to
// start+n-1 carries the same participation rate at the given protection.
func noteTableWithRate(start, n int, protection, rate float64) *marketdata.NoteTable {
	params := make([]domain.NoteParameters, n)
	for i := 0; i < n; i++ {
		params[i] = domain.NoteParameters{
			Year:              start + i,
			ProtectionLevel:   protection,
			ParticipationRate: rate,
			NoteType:          domain.NoteTypeBuffered,
		}
	}
	return marketdata.NewNoteTable(params)
}

func newScenario(mutate func(*domain.Scenario)) *domain.Scenario {
	s := &domain.Scenario{
		StartYear:       1990,
		HorizonYears:    1,
		AllocationName:  "balanced",
		Allocation:      domain.Allocation{Equity: 0.4, Notes: 0.3, Bonds: 0.3},
		ProtectionLevel: 0.10,
		NoteType:        domain.NoteTypeBuffered,
		Withdrawal: domain.WithdrawalConfig{
			Method: domain.WithdrawalFixedPercent,
			Rate:   0,
		},
		InitialValue:       1_000_000,
		RebalanceFrequency: domain.RebalanceYearly,
	}
	if mutate != nil {
		mutate(s)
	}
	s.ScenarioID = idhash.ComputeScenarioID(s)
	return s
}

func TestRun_SingleYearGrowthNoWithdrawal(t *testing.T) {
	// Equity 10%, bond 2%; participation 0.5 turns the 10% equity year
	// into a 5% note year: 1,000,000·(0.4·1.10 + 0.3·1.05 + 0.3·1.02).
	market := flatMarket(1990, 1, 0.10, 0.02, 0.04)
	noteTable := noteTableWithRate(1990, 1, 0.10, 0.5)

	sim := New(market, noteTable)
	out, err := sim.Run(context.Background(), newScenario(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(out.Result.TerminalValue-1_061_000) > tolerance {
		t.Errorf("expected terminal value 1061000, got %f", out.Result.TerminalValue)
	}
	if len(out.Trajectory) != 1 {
		t.Fatalf("expected 1 yearly state, got %d", len(out.Trajectory))
	}
	if out.Result.SurvivalRate != 1.0 {
		t.Errorf("expected survival rate 1.0, got %f", out.Result.SurvivalRate)
	}
	if out.Result.Reason != domain.TerminalHorizonReached {
		t.Errorf("expected horizon_reached, got %s", out.Result.Reason)
	}
}

func TestRun_WithdrawalTakenBeforeGrowth(t *testing.T) {
	// Every asset returns 10%. A 100,000 fixed-dollar withdrawal taken
	// before growth leaves 900,000 to grow; taken after growth it would
	// leave 1,000,000. The terminal value discriminates the ordering.
	market := flatMarket(1990, 1, 0.10, 0.10, 0.04)
	noteTable := noteTableWithRate(1990, 1, 0.10, 1.0)

	s := newScenario(func(s *domain.Scenario) {
		s.Withdrawal = domain.WithdrawalConfig{Method: domain.WithdrawalFixedDollar, Rate: 0.10}
	})

	sim := New(market, noteTable)
	out, err := sim.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Fixed dollar 100,000 leaves 900,000 to grow 10% → 990,000.
	// Growth-first would leave 1,100,000 − 100,000 = 1,000,000.
	if math.Abs(out.Result.TerminalValue-990_000) > tolerance {
		t.Errorf("expected withdrawal-before-growth terminal 990000, got %f", out.Result.TerminalValue)
	}
	if math.Abs(out.Trajectory[0].WithdrawalAmount-100_000) > tolerance {
		t.Errorf("expected withdrawal 100000, got %f", out.Trajectory[0].WithdrawalAmount)
	}
}

func TestRun_RuinDetection(t *testing.T) {
	// 60% fixed-dollar withdrawals against flat markets ruin the
	// portfolio in the second year.
	market := flatMarket(1990, 10, 0, 0, 0.04)
	noteTable := noteTableWithRate(1990, 10, 0.10, 1.0)

	s := newScenario(func(s *domain.Scenario) {
		s.HorizonYears = 10
		s.Withdrawal = domain.WithdrawalConfig{Method: domain.WithdrawalFixedDollar, Rate: 0.60}
	})

	sim := New(market, noteTable)
	out, err := sim.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("ruin must not be an error: %v", err)
	}

	if !out.Result.Completed {
		t.Error("ruined run must still be completed")
	}
	if out.Result.Reason != domain.TerminalRuined {
		t.Errorf("expected ruined, got %s", out.Result.Reason)
	}
	if out.Result.TerminalValue != 0 {
		t.Errorf("expected terminal value 0, got %f", out.Result.TerminalValue)
	}
	if out.Result.SurvivalRate >= 1.0 {
		t.Errorf("expected survival rate < 1.0, got %f", out.Result.SurvivalRate)
	}
	if out.Result.CAGR != nil {
		t.Errorf("expected nil CAGR for ruined run, got %f", *out.Result.CAGR)
	}
	if len(out.Trajectory) >= 10 {
		t.Errorf("remaining years must not be simulated after ruin, got %d states", len(out.Trajectory))
	}
	last := out.Trajectory[len(out.Trajectory)-1]
	if !last.IsRuined {
		t.Error("final state must be flagged as ruined")
	}
}

func TestRun_RebalanceRestoresTargetWeights(t *testing.T) {
	// Equity far outgrows bonds; yearly rebalancing must pull buckets
	// back to target weights at each year end.
	market := flatMarket(1990, 3, 0.30, 0.0, 0.04)
	noteTable := noteTableWithRate(1990, 3, 0.10, 1.0)

	s := newScenario(func(s *domain.Scenario) {
		s.HorizonYears = 3
	})

	sim := New(market, noteTable)
	out, err := sim.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, st := range out.Trajectory {
		if math.Abs(st.EquityValue/st.TotalValue-0.4) > 1e-9 {
			t.Errorf("year %d: equity weight %f, want 0.4", st.YearIndex, st.EquityValue/st.TotalValue)
		}
	}
}

func TestRun_NoRebalanceLetsWeightsDrift(t *testing.T) {
	market := flatMarket(1990, 3, 0.30, 0.0, 0.04)
	noteTable := noteTableWithRate(1990, 3, 0.10, 1.0)

	s := newScenario(func(s *domain.Scenario) {
		s.HorizonYears = 3
		s.RebalanceFrequency = domain.RebalanceNone
	})

	sim := New(market, noteTable)
	out, err := sim.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := out.Trajectory[len(out.Trajectory)-1]
	if last.EquityValue/last.TotalValue <= 0.4 {
		t.Errorf("expected equity weight to drift above 0.4, got %f", last.EquityValue/last.TotalValue)
	}
}

func TestRun_ContributionAddedAtTargetWeights(t *testing.T) {
	market := flatMarket(1990, 1, 0, 0, 0.04)
	noteTable := noteTableWithRate(1990, 1, 0.10, 1.0)

	s := newScenario(func(s *domain.Scenario) {
		s.AnnualContribution = 10_000
		s.RebalanceFrequency = domain.RebalanceNone
	})

	sim := New(market, noteTable)
	out, err := sim.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(out.Result.TerminalValue-1_010_000) > tolerance {
		t.Errorf("expected 1010000 after flat year with contribution, got %f", out.Result.TerminalValue)
	}
	st := out.Trajectory[0]
	if math.Abs(st.EquityValue-404_000) > tolerance {
		t.Errorf("expected equity bucket 404000, got %f", st.EquityValue)
	}
}

func TestRun_MissingMarketYearFails(t *testing.T) {
	market := flatMarket(1990, 2, 0.05, 0.02, 0.04)
	noteTable := noteTableWithRate(1990, 5, 0.10, 1.0)

	s := newScenario(func(s *domain.Scenario) {
		s.HorizonYears = 5
	})

	sim := New(market, noteTable)
	_, err := sim.Run(context.Background(), s)
	if !errors.Is(err, marketdata.ErrMissingYear) {
		t.Errorf("expected ErrMissingYear, got %v", err)
	}
}

func TestRun_TraditionalPortfolioSkipsNoteLookup(t *testing.T) {
	// Zero note weight must not require note parameters.
	market := flatMarket(1990, 1, 0.10, 0.02, 0.04)
	noteTable := marketdata.NewNoteTable(nil)

	s := newScenario(func(s *domain.Scenario) {
		s.Allocation = domain.Allocation{Equity: 0.6, Notes: 0, Bonds: 0.4}
		s.ProtectionLevel = 0
	})

	sim := New(market, noteTable)
	out, err := sim.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 1_000_000 * (0.6*1.10 + 0.4*1.02)
	if math.Abs(out.Result.TerminalValue-want) > tolerance {
		t.Errorf("expected %f, got %f", want, out.Result.TerminalValue)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	market := flatMarket(1990, 1, 0.10, 0.02, 0.04)
	noteTable := noteTableWithRate(1990, 1, 0.10, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(market, noteTable)
	if _, err := sim.Run(ctx, newScenario(nil)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_CAGRAndSharpeOverFlatMarket(t *testing.T) {
	// Two identical 5% years: CAGR is exactly 5%, volatility 0, sharpe 0.
	market := flatMarket(1990, 2, 0.05, 0.05, 0.04)
	noteTable := noteTableWithRate(1990, 2, 0.10, 1.0)

	s := newScenario(func(s *domain.Scenario) {
		s.HorizonYears = 2
	})

	sim := New(market, noteTable)
	out, err := sim.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Result.CAGR == nil {
		t.Fatal("expected CAGR for survived run")
	}
	if math.Abs(*out.Result.CAGR-0.05) > 1e-9 {
		t.Errorf("expected CAGR 0.05, got %f", *out.Result.CAGR)
	}
	if out.Result.Volatility != 0 {
		t.Errorf("expected zero volatility, got %f", out.Result.Volatility)
	}
	if out.Result.SharpeRatio != 0 {
		t.Errorf("expected zero sharpe for zero volatility, got %f", out.Result.SharpeRatio)
	}
}

func TestRun_MaxDrawdownSpansPeakToTrough(t *testing.T) {
	records := []domain.YearlyMarketRecord{
		{Year: 1990, EquityReturn: 0.20, BondReturn: 0.20, RiskFreeRate: 0.04},
		{Year: 1991, EquityReturn: -0.50, BondReturn: -0.50, RiskFreeRate: 0.04},
		{Year: 1992, EquityReturn: 0.10, BondReturn: 0.10, RiskFreeRate: 0.04},
	}
	market := marketdata.NewStore(records)
	noteTable := noteTableWithRate(1990, 3, 0.10, 1.0)

	s := newScenario(func(s *domain.Scenario) {
		s.HorizonYears = 3
		s.Allocation = domain.Allocation{Equity: 1, Notes: 0, Bonds: 0}
		s.ProtectionLevel = 0
	})

	sim := New(market, noteTable)
	out, err := sim.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Peak 1,200,000 after year one, trough 600,000 after year two.
	if math.Abs(out.Result.MaxDrawdown-0.5) > 1e-9 {
		t.Errorf("expected max drawdown 0.5, got %f", out.Result.MaxDrawdown)
	}
}

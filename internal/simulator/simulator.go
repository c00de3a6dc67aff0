// Package simulator runs one scenario as a year-by-year state machine:
// withdraw, grow, contribute, rebalance, record, then check for ruin or
// horizon.
//
// The within-year ordering is fixed: the withdrawal is taken at the start of
// the year against the opening portfolio value, so withdrawn funds do not
// earn that year's return. Rebalancing happens after growth and
// contributions. Ruin (total value reaching zero before the horizon) is a
// normal terminal state with a completed result, never an error.
package simulator

import (
	"context"
	"fmt"
	"math"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/marketdata"
	"portfolio-note-lab/internal/notes"
	"portfolio-note-lab/internal/withdrawal"
)

// DefaultInflationRate fills gaps in the inflation series consumed by
// inflation-adjusted withdrawals.
const DefaultInflationRate = 0.02

// Outcome bundles the full trajectory of a run with its summary result.
type Outcome struct {
	Trajectory []*domain.YearlyState
	Result     *domain.SimulationResult
}

// Simulator executes scenarios against shared read-only market data.
// It is safe for concurrent use: Run touches no mutable state.
type Simulator struct {
	market    *marketdata.Store
	noteTable *marketdata.NoteTable
}

// New creates a Simulator over the given market data and note parameters.
func New(market *marketdata.Store, noteTable *marketdata.NoteTable) *Simulator {
	return &Simulator{market: market, noteTable: noteTable}
}

// Run simulates scenario to its terminal state and returns the trajectory
// and summary result. The context is checked at each year boundary so a
// per-scenario timeout terminates promptly.
func (s *Simulator) Run(ctx context.Context, scenario *domain.Scenario) (*Outcome, error) {
	if err := scenario.Allocation.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.ScenarioID, err)
	}
	if scenario.HorizonYears <= 0 {
		return nil, fmt.Errorf("scenario %s: horizon must be positive", scenario.ScenarioID)
	}

	inflation := s.market.InflationSeries(scenario.StartYear, scenario.HorizonYears, DefaultInflationRate)
	strat, err := withdrawal.FromConfig(scenario.Withdrawal, inflation)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.ScenarioID, err)
	}

	alloc := scenario.Allocation
	equity := scenario.InitialValue * alloc.Equity
	note := scenario.InitialValue * alloc.Notes
	bond := scenario.InitialValue * alloc.Bonds

	trajectory := make([]*domain.YearlyState, 0, scenario.HorizonYears)
	riskFreeRates := make([]float64, 0, scenario.HorizonYears)
	ruined := false

	for yearIdx := 0; yearIdx < scenario.HorizonYears; yearIdx++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scenario %s: year %d: %w", scenario.ScenarioID, yearIdx, err)
		}

		calendarYear := scenario.StartYear + yearIdx
		total := equity + note + bond

		// 1. Withdraw against the opening value, proportionally from
		// each bucket. Never more than what is held.
		amount := strat.Compute(withdrawal.Input{
			CurrentValue: total,
			ElapsedYears: yearIdx,
			InitialValue: scenario.InitialValue,
			InitialAge:   scenario.Withdrawal.InitialAge,
		})
		if amount > total {
			amount = total
		}
		if total > 0 && amount > 0 {
			factor := (total - amount) / total
			equity *= factor
			note *= factor
			bond *= factor
		}
		afterWithdrawal := equity + note + bond

		// 2. Market data and note return for the year.
		record, err := s.market.Record(calendarYear)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.ScenarioID, err)
		}

		noteReturn := 0.0
		if alloc.Notes > 0 {
			params, err := s.noteTable.Lookup(calendarYear, scenario.ProtectionLevel)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: %w", scenario.ScenarioID, err)
			}
			noteReturn, err = notes.Return(record.EquityReturn, params.ParticipationRate, params.ProtectionLevel, params.NoteType)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: %w", scenario.ScenarioID, err)
			}
		}

		// 3. Grow each bucket by its return.
		equity *= 1 + record.EquityReturn
		note *= 1 + noteReturn
		bond *= 1 + record.BondReturn
		afterGrowth := equity + note + bond

		portfolioReturn := 0.0
		if afterWithdrawal > 0 {
			portfolioReturn = afterGrowth/afterWithdrawal - 1
		}

		// 4. Contribute toward target weights.
		if scenario.AnnualContribution > 0 {
			equity += scenario.AnnualContribution * alloc.Equity
			note += scenario.AnnualContribution * alloc.Notes
			bond += scenario.AnnualContribution * alloc.Bonds
		}

		// 5. Rebalance at year boundaries unless disabled.
		total = equity + note + bond
		if scenario.RebalanceFrequency != domain.RebalanceNone && total > 0 {
			equity = total * alloc.Equity
			note = total * alloc.Notes
			bond = total * alloc.Bonds
		}

		// 6. Record the year.
		total = equity + note + bond
		state := &domain.YearlyState{
			ScenarioID:         scenario.ScenarioID,
			YearIndex:          yearIdx,
			CalendarYear:       calendarYear,
			EquityValue:        equity,
			NoteValue:          note,
			BondValue:          bond,
			TotalValue:         total,
			WithdrawalAmount:   amount,
			ContributionAmount: scenario.AnnualContribution,
			EquityReturn:       record.EquityReturn,
			NoteReturn:         noteReturn,
			BondReturn:         record.BondReturn,
			PortfolioReturn:    portfolioReturn,
		}
		trajectory = append(trajectory, state)
		riskFreeRates = append(riskFreeRates, record.RiskFreeRate)

		// 7. Ruin ends the run immediately.
		if total <= 0 {
			state.IsRuined = true
			ruined = true
			break
		}
	}

	result := summarize(scenario, trajectory, riskFreeRates, ruined)
	return &Outcome{Trajectory: trajectory, Result: result}, nil
}

// summarize computes the SimulationResult for a finished trajectory.
func summarize(scenario *domain.Scenario, trajectory []*domain.YearlyState, riskFreeRates []float64, ruined bool) *domain.SimulationResult {
	yearsSurvived := len(trajectory)

	terminal := 0.0
	if !ruined && yearsSurvived > 0 {
		terminal = trajectory[yearsSurvived-1].TotalValue
	}

	var cagr *float64
	if !ruined && yearsSurvived > 0 && scenario.InitialValue > 0 {
		v := math.Pow(terminal/scenario.InitialValue, 1/float64(yearsSurvived)) - 1
		cagr = &v
	}

	returns := make([]float64, yearsSurvived)
	values := make([]float64, 0, yearsSurvived+1)
	values = append(values, scenario.InitialValue)
	for i, st := range trajectory {
		returns[i] = st.PortfolioReturn
		values = append(values, st.TotalValue)
	}

	meanReturn := mean(returns)
	vol := stddev(returns, meanReturn)

	reason := domain.TerminalHorizonReached
	completedYears := yearsSurvived
	if ruined {
		reason = domain.TerminalRuined
		// The ruin year was not survived.
		completedYears--
	}

	return &domain.SimulationResult{
		ScenarioID:    scenario.ScenarioID,
		TerminalValue: terminal,
		CAGR:          cagr,
		Volatility:    vol,
		MaxDrawdown:   maxDrawdown(values),
		SharpeRatio:   sharpeRatio(meanReturn, mean(riskFreeRates), vol),
		SurvivalRate:  float64(completedYears) / float64(scenario.HorizonYears),
		Completed:     true,
		Reason:        reason,
	}
}

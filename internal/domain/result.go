package domain

// TerminalReason records why a simulation stopped.
type TerminalReason string

// Terminal reason constants.
const (
	TerminalHorizonReached TerminalReason = "horizon_reached"
	TerminalRuined         TerminalReason = "ruined"
	TerminalFailed         TerminalReason = "failed"
)

// SimulationResult summarizes one completed (or failed) scenario.
// Exactly one result exists per scenario identity; writes are idempotent
// upserts keyed by ScenarioID.
//
// Ruin is a normal outcome: a ruined run has Completed=true, TerminalValue=0,
// CAGR=nil and SurvivalRate<1. Completed=false marks scenarios that failed
// with an error (missing market data, valuation domain error, timeout after
// retry); FailureReason carries the cause.
type SimulationResult struct {
	ScenarioID    string
	TerminalValue float64
	CAGR          *float64 // nil when the portfolio was ruined or the run failed
	Volatility    float64
	MaxDrawdown   float64
	SharpeRatio   float64
	SurvivalRate  float64
	Completed     bool
	Reason        TerminalReason
	FailureReason *string
}

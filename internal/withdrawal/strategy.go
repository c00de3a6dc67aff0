// Package withdrawal implements the withdrawal policy variants used by the
// portfolio simulator. The variant set is closed: fixed_percent,
// fixed_dollar and rmd.
package withdrawal

// Input holds the simulation state a strategy may consult when computing
// the year's withdrawal.
type Input struct {
	CurrentValue float64
	ElapsedYears int
	InitialValue float64
	InitialAge   int
}

// Strategy maps simulation state to a withdrawal amount. Implementations
// are pure: the same input always yields the same amount.
type Strategy interface {
	// Compute returns the withdrawal amount for the year. The amount is
	// never negative; callers clamp it to the available portfolio value.
	Compute(in Input) float64

	// ID returns the strategy identifier (includes parameters).
	ID() string
}

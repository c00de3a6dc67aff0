package withdrawal

import "fmt"

// FixedPercentStrategy withdraws a fixed fraction of the current portfolio
// value each year.
type FixedPercentStrategy struct {
	rate float64
}

// NewFixedPercentStrategy creates a fixed-percent strategy.
func NewFixedPercentStrategy(rate float64) *FixedPercentStrategy {
	return &FixedPercentStrategy{rate: rate}
}

// Compute returns rate * current value.
func (s *FixedPercentStrategy) Compute(in Input) float64 {
	if in.CurrentValue <= 0 {
		return 0
	}
	return s.rate * in.CurrentValue
}

// ID returns the strategy identifier.
func (s *FixedPercentStrategy) ID() string {
	return fmt.Sprintf("fixed_percent_%g", s.rate)
}

var _ Strategy = (*FixedPercentStrategy)(nil)

package withdrawal

import "fmt"

// FixedDollarStrategy withdraws a constant dollar amount derived from the
// initial portfolio value, optionally grown by a yearly inflation series.
type FixedDollarStrategy struct {
	rate      float64
	inflation []float64 // per-elapsed-year inflation rates; nil disables adjustment
}

// NewFixedDollarStrategy creates a fixed-dollar strategy. inflation is the
// yearly inflation series indexed by elapsed year; pass nil for a constant
// withdrawal.
func NewFixedDollarStrategy(rate float64, inflation []float64) *FixedDollarStrategy {
	return &FixedDollarStrategy{rate: rate, inflation: inflation}
}

// Compute returns rate * initial value, compounded by the inflation series
// over the elapsed years when adjustment is enabled. Years past the end of
// the series reuse its last rate.
func (s *FixedDollarStrategy) Compute(in Input) float64 {
	amount := s.rate * in.InitialValue
	if len(s.inflation) == 0 {
		return amount
	}

	for i := 0; i < in.ElapsedYears; i++ {
		idx := i
		if idx >= len(s.inflation) {
			idx = len(s.inflation) - 1
		}
		amount *= 1 + s.inflation[idx]
	}
	return amount
}

// ID returns the strategy identifier.
func (s *FixedDollarStrategy) ID() string {
	if len(s.inflation) > 0 {
		return fmt.Sprintf("fixed_dollar_%g_inflation_adjusted", s.rate)
	}
	return fmt.Sprintf("fixed_dollar_%g", s.rate)
}

var _ Strategy = (*FixedDollarStrategy)(nil)

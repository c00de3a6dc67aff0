package withdrawal

// uniformLifetimeTable maps age to the IRS Uniform Lifetime divisor used for
// Required Minimum Distributions. Fixed external input, not computed.
var uniformLifetimeTable = map[int]float64{
	72: 27.4, 73: 26.5, 74: 25.5, 75: 24.6, 76: 23.7, 77: 22.9,
	78: 22.0, 79: 21.1, 80: 20.2, 81: 19.4, 82: 18.5, 83: 17.7,
	84: 16.8, 85: 16.0, 86: 15.2, 87: 14.4, 88: 13.7, 89: 12.9,
	90: 12.2, 91: 11.5, 92: 10.8, 93: 10.1, 94: 9.5, 95: 8.9,
	96: 8.4, 97: 7.8, 98: 7.3, 99: 6.8, 100: 6.4,
}

// Table age bounds.
const (
	rmdTableMinAge = 72
	rmdTableMaxAge = 100
)

// RMDStrategy withdraws current_value / divisor(age), with the divisor
// sourced from the Uniform Lifetime table. Ages outside the table clamp to
// the nearest boundary divisor.
type RMDStrategy struct{}

// NewRMDStrategy creates an RMD strategy.
func NewRMDStrategy() *RMDStrategy {
	return &RMDStrategy{}
}

// Divisor returns the life-expectancy divisor for age, clamped to the
// table's boundaries.
func Divisor(age int) float64 {
	if age < rmdTableMinAge {
		age = rmdTableMinAge
	}
	if age > rmdTableMaxAge {
		age = rmdTableMaxAge
	}
	return uniformLifetimeTable[age]
}

// Compute returns the required distribution for the simulated age.
func (s *RMDStrategy) Compute(in Input) float64 {
	if in.CurrentValue <= 0 {
		return 0
	}
	age := in.InitialAge + in.ElapsedYears
	return in.CurrentValue / Divisor(age)
}

// ID returns the strategy identifier.
func (s *RMDStrategy) ID() string {
	return "rmd"
}

var _ Strategy = (*RMDStrategy)(nil)

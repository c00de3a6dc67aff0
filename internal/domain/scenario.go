package domain

// RebalanceFrequency controls when the portfolio is pulled back to target
// weights. Simulation steps are yearly, so every frequency finer than a year
// rebalances at each year boundary.
type RebalanceFrequency string

// Rebalance frequency constants.
const (
	RebalanceYearly    RebalanceFrequency = "yearly"
	RebalanceQuarterly RebalanceFrequency = "quarterly"
	RebalanceMonthly   RebalanceFrequency = "monthly"
	RebalanceNone      RebalanceFrequency = "none"
)

// Valid reports whether f is a known rebalance frequency.
func (f RebalanceFrequency) Valid() bool {
	switch f {
	case RebalanceYearly, RebalanceQuarterly, RebalanceMonthly, RebalanceNone:
		return true
	}
	return false
}

// WithdrawalMethod identifies a withdrawal policy variant.
type WithdrawalMethod string

// Withdrawal method constants.
const (
	WithdrawalFixedPercent WithdrawalMethod = "fixed_percent"
	WithdrawalFixedDollar  WithdrawalMethod = "fixed_dollar"
	WithdrawalRMD          WithdrawalMethod = "rmd"
)

// Valid reports whether m is a known withdrawal method.
func (m WithdrawalMethod) Valid() bool {
	switch m {
	case WithdrawalFixedPercent, WithdrawalFixedDollar, WithdrawalRMD:
		return true
	}
	return false
}

// WithdrawalConfig parameterizes one withdrawal policy.
type WithdrawalConfig struct {
	Method WithdrawalMethod
	// Rate is the annual withdrawal fraction for fixed_percent and
	// fixed_dollar; ignored for rmd.
	Rate float64
	// InflationAdjusted grows fixed_dollar withdrawals by the yearly
	// inflation series.
	InflationAdjusted bool
	// InitialAge is the simulated age at year zero, used by rmd.
	InitialAge int
}

// Scenario fully describes one simulation run. It is immutable; ScenarioID
// is the SHA-256 content hash of the remaining fields and serves as the
// identity for idempotent persistence and sweep resume.
type Scenario struct {
	ScenarioID         string
	StartYear          int
	HorizonYears       int
	AllocationName     string // label from the parameter file, e.g. "balanced"
	Allocation         Allocation
	ProtectionLevel    float64
	NoteType           NoteType
	Withdrawal         WithdrawalConfig
	InitialValue       float64
	RebalanceFrequency RebalanceFrequency
	AnnualContribution float64
}

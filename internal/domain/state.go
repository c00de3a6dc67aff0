package domain

// YearlyState captures the portfolio at the end of one simulated year.
// States form an append-only, ordered sequence within a run.
type YearlyState struct {
	ScenarioID         string
	YearIndex          int // 0-based offset from the scenario start year
	CalendarYear       int
	EquityValue        float64
	NoteValue          float64
	BondValue          float64
	TotalValue         float64
	WithdrawalAmount   float64
	ContributionAmount float64
	EquityReturn       float64
	NoteReturn         float64
	BondReturn         float64
	PortfolioReturn    float64 // market return of the year, net of flows
	IsRuined           bool
}

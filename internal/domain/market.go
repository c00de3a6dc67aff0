package domain

// YearlyMarketRecord represents one year of market observations.
// Records are immutable once loaded into the market data store.
type YearlyMarketRecord struct {
	Year          int
	EquityReturn  float64 // total return of the equity index for the year
	BondReturn    float64 // total return of the bond index for the year
	RiskFreeRate  float64 // annualized risk-free rate at year start
	Volatility    float64 // annualized implied volatility at year start
	FundingSpread float64 // issuer funding spread over the risk-free rate
	DividendYield float64 // continuous dividend yield of the equity index
	InflationRate float64 // realized inflation for the year
}

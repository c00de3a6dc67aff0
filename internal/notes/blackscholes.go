// Package notes prices structured notes: closed-form option valuation,
// participation-rate derivation and payoff computation for the Buffered and
// Floored note variants.
package notes

import "math"

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// BlackScholesCall returns the price of a European call with continuous
// dividend yield. The spot is discounted by the dividend yield before the
// d1/d2 terms are computed.
//
// As term or volatility collapses to zero the closed form degenerates
// (zero denominator in d1), so the intrinsic value on the dividend-adjusted
// spot is returned instead of propagating NaN.
func BlackScholesCall(spot, strike, term, riskFree, sigma, divYield float64) float64 {
	spotAdj := spot * math.Exp(-divYield*term)
	if term <= 0 || sigma <= 0 {
		return math.Max(spotAdj-strike, 0)
	}

	d1 := (math.Log(spotAdj/strike) + (riskFree+0.5*sigma*sigma)*term) / (sigma * math.Sqrt(term))
	d2 := d1 - sigma*math.Sqrt(term)

	return spotAdj*normCDF(d1) - strike*math.Exp(-riskFree*term)*normCDF(d2)
}

// BlackScholesPut returns the price of a European put with continuous
// dividend yield. Degenerate inputs fall back to intrinsic value, mirroring
// BlackScholesCall.
func BlackScholesPut(spot, strike, term, riskFree, sigma, divYield float64) float64 {
	spotAdj := spot * math.Exp(-divYield*term)
	if term <= 0 || sigma <= 0 {
		return math.Max(strike-spotAdj, 0)
	}

	d1 := (math.Log(spotAdj/strike) + (riskFree+0.5*sigma*sigma)*term) / (sigma * math.Sqrt(term))
	d2 := d1 - sigma*math.Sqrt(term)

	return strike*math.Exp(-riskFree*term)*normCDF(-d2) - spotAdj*normCDF(-d1)
}

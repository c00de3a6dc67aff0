package notes

import (
	"errors"
	"fmt"
	"math"
)

// MaxParticipationRate caps the derived participation rate.
const MaxParticipationRate = 2.0

// Valuation errors. All indicate option-pricing inputs outside the model's
// domain; they mark the owning scenario as failed without stopping the sweep.
var (
	ErrInvalidTerm       = errors.New("note term must be positive")
	ErrInvalidVolatility = errors.New("volatility must be positive")
	ErrZeroCallPrice     = errors.New("at-the-money call price is zero")
	ErrInvalidProtection = errors.New("protection level must be in [0, 1)")
)

// PricingInputs carries everything needed to derive a participation rate for
// a one-year structured note at issuance.
type PricingInputs struct {
	StartPrice      float64
	RiskFreeRate    float64
	Volatility      float64
	ProtectionLevel float64
	Term            float64
	IVFactor        float64 // scales quoted volatility to traded implied vol
	FundingSpread   float64
	DividendYield   float64
}

// ParticipationRate derives the cost-neutral participation rate of a note:
// the zero-coupon bond is bought at the issuer's funding rate, the freed-up
// capital plus the premium of the sold protective put finances at-the-money
// calls, and the rate is how many calls that budget buys. Capped at
// MaxParticipationRate.
func ParticipationRate(in PricingInputs) (float64, error) {
	if in.Term <= 0 {
		return 0, fmt.Errorf("%w: term=%g", ErrInvalidTerm, in.Term)
	}
	if in.Volatility <= 0 {
		return 0, fmt.Errorf("%w: volatility=%g", ErrInvalidVolatility, in.Volatility)
	}
	if in.ProtectionLevel < 0 || in.ProtectionLevel >= 1 {
		return 0, fmt.Errorf("%w: protection=%g", ErrInvalidProtection, in.ProtectionLevel)
	}

	fundingRate := in.RiskFreeRate + in.FundingSpread
	bondPrice := 1.0 / math.Pow(1+fundingRate, in.Term)
	bondCapital := 1.0 - bondPrice

	sigma := in.Volatility * in.IVFactor
	strike := in.StartPrice * (1 - in.ProtectionLevel)

	putPremium := BlackScholesPut(in.StartPrice, strike, in.Term, in.RiskFreeRate, sigma, in.DividendYield)
	callPrice := BlackScholesCall(in.StartPrice, in.StartPrice, in.Term, in.RiskFreeRate, sigma, in.DividendYield)

	callCost := callPrice / in.StartPrice
	if callCost < 1e-12 {
		return 0, fmt.Errorf("%w: call=%g", ErrZeroCallPrice, callPrice)
	}

	participation := (bondCapital + putPremium/in.StartPrice) / callCost
	if participation > MaxParticipationRate {
		participation = MaxParticipationRate
	}
	if participation < 0 {
		participation = 0
	}
	return participation, nil
}

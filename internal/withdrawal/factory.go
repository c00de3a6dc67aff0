package withdrawal

import (
	"errors"

	"portfolio-note-lab/internal/domain"
)

// Factory errors.
var (
	ErrUnknownMethod = errors.New("unknown withdrawal method")
	ErrInvalidRate   = errors.New("withdrawal rate must be non-negative")
)

// FromConfig creates a Strategy from domain.WithdrawalConfig. inflation is
// the yearly inflation series consumed by inflation-adjusted fixed-dollar
// withdrawals; it is ignored by the other variants.
func FromConfig(cfg domain.WithdrawalConfig, inflation []float64) (Strategy, error) {
	if cfg.Rate < 0 {
		return nil, ErrInvalidRate
	}

	switch cfg.Method {
	case domain.WithdrawalFixedPercent:
		return NewFixedPercentStrategy(cfg.Rate), nil
	case domain.WithdrawalFixedDollar:
		if cfg.InflationAdjusted {
			return NewFixedDollarStrategy(cfg.Rate, inflation), nil
		}
		return NewFixedDollarStrategy(cfg.Rate, nil), nil
	case domain.WithdrawalRMD:
		return NewRMDStrategy(), nil
	default:
		return nil, ErrUnknownMethod
	}
}

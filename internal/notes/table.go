package notes

import (
	"fmt"

	"portfolio-note-lab/internal/domain"
)

// DefaultIVFactor scales quoted index volatility down to the implied
// volatility actually traded on one-year note hedges.
const DefaultIVFactor = 0.90

// DeriveParameters prices one note issuance per (market year × protection
// level) and returns the resulting parameter table. Years whose pricing
// inputs are outside the model's domain yield an error naming the year; the
// caller decides whether to drop the year or abort.
func DeriveParameters(records []domain.YearlyMarketRecord, protectionLevels []float64, noteType domain.NoteType, ivFactor float64) ([]domain.NoteParameters, error) {
	if !noteType.Valid() {
		return nil, ErrUnknownNoteType
	}
	if ivFactor <= 0 {
		ivFactor = DefaultIVFactor
	}

	out := make([]domain.NoteParameters, 0, len(records)*len(protectionLevels))
	for _, r := range records {
		for _, protection := range protectionLevels {
			rate, err := ParticipationRate(PricingInputs{
				StartPrice:      1.0,
				RiskFreeRate:    r.RiskFreeRate,
				Volatility:      r.Volatility,
				ProtectionLevel: protection,
				Term:            1.0,
				IVFactor:        ivFactor,
				FundingSpread:   r.FundingSpread,
				DividendYield:   r.DividendYield,
			})
			if err != nil {
				return nil, fmt.Errorf("price note year=%d protection=%g: %w", r.Year, protection, err)
			}

			out = append(out, domain.NoteParameters{
				Year:              r.Year,
				ProtectionLevel:   protection,
				ParticipationRate: rate,
				NoteType:          noteType,
			})
		}
	}

	return out, nil
}

// Package sweep expands the declarative parameter grid into scenario
// descriptors and drives their execution across a bounded worker pool with
// resumable, idempotent persistence.
package sweep

import (
	"portfolio-note-lab/internal/config"
	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/idhash"
)

// ExpandGrid builds the Cartesian product of the configured sweep dimensions
// (start years × horizons × allocations × protection levels × withdrawal
// rates) as scenario descriptors, each carrying its deterministic content
// hash as identity.
//
// Two pruning rules cut combinations that cannot produce a valid run:
//   - a (start year, horizon) pair whose final simulated year runs past
//     lastDataYear is dropped, since the market table cannot cover it;
//   - allocations holding no notes ignore the protection-level dimension and
//     get a single descriptor with protection 0.
func ExpandGrid(cfg *config.Config, lastDataYear int) []*domain.Scenario {
	rates := cfg.Withdrawal.Rates
	if len(rates) == 0 {
		// RMD ignores the rate; keep a single zero entry so the
		// Cartesian product stays non-empty.
		rates = []float64{0}
	}

	var scenarios []*domain.Scenario
	for _, startYear := range cfg.Time.StartYears {
		for _, horizon := range cfg.Time.TimeHorizons {
			if startYear+horizon-1 > lastDataYear {
				continue
			}
			for _, name := range cfg.AllocationNames() {
				weights := cfg.Allocations[name]
				protections := cfg.Notes.ProtectionLevels
				if weights.Notes == 0 {
					protections = []float64{0}
				}
				for _, protection := range protections {
					for _, rate := range rates {
						s := &domain.Scenario{
							StartYear:       startYear,
							HorizonYears:    horizon,
							AllocationName:  name,
							Allocation:      domain.Allocation{Equity: weights.Equity, Notes: weights.Notes, Bonds: weights.Bonds},
							ProtectionLevel: protection,
							NoteType:        domain.NoteType(cfg.Notes.NoteType),
							Withdrawal: domain.WithdrawalConfig{
								Method:            domain.WithdrawalMethod(cfg.Withdrawal.Method),
								Rate:              rate,
								InflationAdjusted: cfg.Withdrawal.InflationAdjusted,
								InitialAge:        cfg.Withdrawal.InitialAge,
							},
							InitialValue:       cfg.Initial.StartingAmount,
							RebalanceFrequency: domain.RebalanceFrequency(cfg.Initial.RebalancingFrequency),
							AnnualContribution: cfg.Initial.AnnualContribution,
						}
						s.ScenarioID = idhash.ComputeScenarioID(s)
						scenarios = append(scenarios, s)
					}
				}
			}
		}
	}
	return scenarios
}

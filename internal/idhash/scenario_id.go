package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"portfolio-note-lab/internal/domain"
)

// ComputeScenarioID computes a deterministic scenario_id using SHA256 over
// the full parameter set of the scenario. Float parameters are rendered with
// %g so that equal values always produce equal strings.
// Returns hex-encoded hash (64 characters).
func ComputeScenarioID(s *domain.Scenario) string {
	data := fmt.Sprintf("%d|%d|%s|%g|%g|%g|%g|%s|%s|%g|%t|%d|%g|%s|%g",
		s.StartYear,
		s.HorizonYears,
		s.AllocationName,
		s.Allocation.Equity,
		s.Allocation.Notes,
		s.Allocation.Bonds,
		s.ProtectionLevel,
		string(s.NoteType),
		string(s.Withdrawal.Method),
		s.Withdrawal.Rate,
		s.Withdrawal.InflationAdjusted,
		s.Withdrawal.InitialAge,
		s.InitialValue,
		string(s.RebalanceFrequency),
		s.AnnualContribution,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

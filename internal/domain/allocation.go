package domain

import (
	"errors"
	"math"
)

// AllocationTolerance is the permitted deviation of the weight sum from 1.0.
const AllocationTolerance = 1e-9

// ErrAllocationSum is returned when allocation weights do not sum to 1.0.
var ErrAllocationSum = errors.New("allocation weights must sum to 1.0")

// Allocation maps the three asset classes to target portfolio weights.
type Allocation struct {
	Equity float64
	Notes  float64
	Bonds  float64
}

// Sum returns the total of all weights.
func (a Allocation) Sum() float64 {
	return a.Equity + a.Notes + a.Bonds
}

// Validate checks that all weights are non-negative and sum to 1.0
// within AllocationTolerance.
func (a Allocation) Validate() error {
	if a.Equity < 0 || a.Notes < 0 || a.Bonds < 0 {
		return ErrAllocationSum
	}
	if math.Abs(a.Sum()-1.0) > AllocationTolerance {
		return ErrAllocationSum
	}
	return nil
}

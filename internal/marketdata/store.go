// Package marketdata provides read-only lookup of yearly market
// observations and structured-note parameters. Both tables are loaded once
// before a sweep starts and shared across all workers.
package marketdata

import (
	"errors"
	"fmt"
	"sort"

	"portfolio-note-lab/internal/domain"
)

// Errors returned by lookups. A missing year marks the requesting scenario
// as failed; it never aborts the whole sweep.
var (
	ErrMissingYear     = errors.New("no market data for year")
	ErrMissingNoteYear = errors.New("no note parameters for year")
	ErrEmptyStore      = errors.New("market data store is empty")
)

// Store is an immutable year-keyed table of market records.
type Store struct {
	records map[int]domain.YearlyMarketRecord
	years   []int // sorted
}

// NewStore builds a Store from records. Later duplicates of a year replace
// earlier ones.
func NewStore(records []domain.YearlyMarketRecord) *Store {
	byYear := make(map[int]domain.YearlyMarketRecord, len(records))
	for _, r := range records {
		byYear[r.Year] = r
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	return &Store{records: byYear, years: years}
}

// Record returns the market record for year.
// Returns ErrMissingYear if the year is not covered.
func (s *Store) Record(year int) (domain.YearlyMarketRecord, error) {
	r, ok := s.records[year]
	if !ok {
		return domain.YearlyMarketRecord{}, fmt.Errorf("%w: %d", ErrMissingYear, year)
	}
	return r, nil
}

// Len returns the number of years covered.
func (s *Store) Len() int {
	return len(s.years)
}

// Years returns the covered calendar years in ascending order.
func (s *Store) Years() []int {
	out := make([]int, len(s.years))
	copy(out, s.years)
	return out
}

// LastYear returns the latest covered calendar year.
// Returns ErrEmptyStore when no records are loaded.
func (s *Store) LastYear() (int, error) {
	if len(s.years) == 0 {
		return 0, ErrEmptyStore
	}
	return s.years[len(s.years)-1], nil
}

// CheckRange verifies that every year in [start, start+horizon) is covered.
// Gaps inside the range are a data error even when the endpoints exist.
func (s *Store) CheckRange(start, horizon int) error {
	for year := start; year < start+horizon; year++ {
		if _, ok := s.records[year]; !ok {
			return fmt.Errorf("%w: %d", ErrMissingYear, year)
		}
	}
	return nil
}

// InflationSeries returns the inflation rates for horizon years starting at
// start, in year order. Missing years fall back to defaultRate.
func (s *Store) InflationSeries(start, horizon int, defaultRate float64) []float64 {
	out := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		if r, ok := s.records[start+i]; ok {
			out[i] = r.InflationRate
		} else {
			out[i] = defaultRate
		}
	}
	return out
}

// noteKey identifies a note issuance by year and protection level.
type noteKey struct {
	year       int
	protection float64
}

// NoteTable is an immutable lookup of note parameters keyed by
// (year, protection level).
type NoteTable struct {
	params map[noteKey]domain.NoteParameters
}

// NewNoteTable builds a NoteTable from parameter rows.
func NewNoteTable(params []domain.NoteParameters) *NoteTable {
	byKey := make(map[noteKey]domain.NoteParameters, len(params))
	for _, p := range params {
		byKey[noteKey{year: p.Year, protection: p.ProtectionLevel}] = p
	}
	return &NoteTable{params: byKey}
}

// Lookup returns the note parameters issued in year at the given protection
// level. Returns ErrMissingNoteYear if no such issuance exists.
func (t *NoteTable) Lookup(year int, protection float64) (domain.NoteParameters, error) {
	p, ok := t.params[noteKey{year: year, protection: protection}]
	if !ok {
		return domain.NoteParameters{}, fmt.Errorf("%w: year=%d protection=%g", ErrMissingNoteYear, year, protection)
	}
	return p, nil
}

// Len returns the number of issuances in the table.
func (t *NoteTable) Len() int {
	return len(t.params)
}

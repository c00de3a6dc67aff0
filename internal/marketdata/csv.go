package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"portfolio-note-lab/internal/domain"
)

// Market data CSV column layout. One row per calendar year.
var marketHeader = []string{
	"year", "equity_return", "bond_return", "risk_free_rate",
	"volatility", "funding_spread", "dividend_yield", "inflation_rate",
}

// LoadMarketCSV reads yearly market records from a CSV file with the
// marketHeader column layout.
func LoadMarketCSV(path string) ([]domain.YearlyMarketRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market data file: %w", err)
	}
	defer f.Close()

	records, err := readMarketCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

func readMarketCSV(r io.Reader) ([]domain.YearlyMarketRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(marketHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range marketHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], want)
		}
	}

	var out []domain.YearlyMarketRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		year, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, row[0])
		}

		fields := make([]float64, len(row)-1)
		for i, raw := range row[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s %q", line, marketHeader[i+1], raw)
			}
			fields[i] = v
		}

		out = append(out, domain.YearlyMarketRecord{
			Year:          year,
			EquityReturn:  fields[0],
			BondReturn:    fields[1],
			RiskFreeRate:  fields[2],
			Volatility:    fields[3],
			FundingSpread: fields[4],
			DividendYield: fields[5],
			InflationRate: fields[6],
		})
	}

	return out, nil
}

// Note parameter CSV column layout. One row per (year, protection level).
var noteHeader = []string{"year", "protection_level", "participation_rate", "note_type"}

// LoadNoteCSV reads precomputed note parameters from a CSV file with the
// noteHeader column layout.
func LoadNoteCSV(path string) ([]domain.NoteParameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open note parameter file: %w", err)
	}
	defer f.Close()

	params, err := readNoteCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return params, nil
}

func readNoteCSV(r io.Reader) ([]domain.NoteParameters, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(noteHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range noteHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], want)
		}
	}

	var out []domain.NoteParameters
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		year, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, row[0])
		}
		protection, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid protection_level %q", line, row[1])
		}
		participation, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid participation_rate %q", line, row[2])
		}
		noteType := domain.NoteType(row[3])
		if !noteType.Valid() {
			return nil, fmt.Errorf("line %d: invalid note_type %q", line, row[3])
		}

		out = append(out, domain.NoteParameters{
			Year:              year,
			ProtectionLevel:   protection,
			ParticipationRate: participation,
			NoteType:          noteType,
		})
	}

	return out, nil
}

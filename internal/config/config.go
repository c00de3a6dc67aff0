// Package config loads and validates the declarative sweep parameter file.
//
// The file is YAML with six recognized sections: time_parameters,
// portfolio_allocations, note_parameters, withdrawal_parameters,
// initial_conditions and output_parameters, plus a market_data section
// pointing at the historical inputs. Validation is strict and runs before any
// scenario is scheduled: a malformed file aborts the run.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"portfolio-note-lab/internal/domain"
)

var (
	ErrEmptyDimension    = errors.New("config: sweep dimension is empty")
	ErrInvalidAllocation = errors.New("config: invalid allocation")
	ErrInvalidProtection = errors.New("config: protection level out of [0,1)")
	ErrInvalidMethod     = errors.New("config: unknown withdrawal method")
	ErrInvalidFrequency  = errors.New("config: unknown rebalancing frequency")
	ErrInvalidRate       = errors.New("config: withdrawal rate out of range")
	ErrInvalidInitial    = errors.New("config: invalid initial conditions")
)

// TimeParameters declares the temporal sweep dimensions.
type TimeParameters struct {
	StartYears   []int `yaml:"start_years"`
	TimeHorizons []int `yaml:"time_horizons"`
}

// AllocationWeights is one named portfolio mix.
type AllocationWeights struct {
	Equity float64 `yaml:"equity"`
	Notes  float64 `yaml:"notes"`
	Bonds  float64 `yaml:"bonds"`
}

// NoteParameters configures the structured-note leg of the sweep.
type NoteParameters struct {
	ProtectionLevels []float64 `yaml:"protection_levels"`
	NoteType         string    `yaml:"note_type"`
	IVFactor         float64   `yaml:"iv_factor"`
	// ParametersCSV optionally points at a precomputed participation-rate
	// table; when empty the table is derived from market data at setup.
	ParametersCSV string `yaml:"parameters_csv"`
}

// WithdrawalParameters configures the withdrawal sweep dimension.
type WithdrawalParameters struct {
	Method            string    `yaml:"method"`
	Rates             []float64 `yaml:"rates"`
	InflationAdjusted bool      `yaml:"inflation_adjusted"`
	InitialAge        int       `yaml:"initial_age"`
}

// InitialConditions holds per-scenario starting state shared by the whole
// sweep.
type InitialConditions struct {
	StartingAmount       float64 `yaml:"starting_amount"`
	AnnualContribution   float64 `yaml:"annual_contribution"`
	RebalancingFrequency string  `yaml:"rebalancing_frequency"`
	DefaultInflationRate float64 `yaml:"default_inflation_rate"`
}

// OutputParameters configures where results land.
type OutputParameters struct {
	ResultsDirectory   string   `yaml:"results_directory"`
	DatabaseURL        string   `yaml:"database_url"`
	ExportTrajectories bool     `yaml:"export_trajectories"`
	CalculateMetrics   []string `yaml:"calculate_metrics"`
}

// MarketData points at the historical market table.
type MarketData struct {
	CSVPath string `yaml:"csv_path"`
}

// Config is the validated parameter file. Treat it as immutable after Load.
type Config struct {
	Time        TimeParameters               `yaml:"time_parameters"`
	Allocations map[string]AllocationWeights `yaml:"portfolio_allocations"`
	Notes       NoteParameters               `yaml:"note_parameters"`
	Withdrawal  WithdrawalParameters         `yaml:"withdrawal_parameters"`
	Initial     InitialConditions            `yaml:"initial_conditions"`
	Output      OutputParameters             `yaml:"output_parameters"`
	Market      MarketData                   `yaml:"market_data"`

	// Raw is the file content as read, kept for the parameter-file
	// snapshot persisted at setup.
	Raw []byte `yaml:"-"`
}

// Load reads, parses, defaults and validates a parameter file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameter file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parameter file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses and validates raw YAML parameter content.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}
	cfg.Raw = data
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Notes.NoteType == "" {
		c.Notes.NoteType = string(domain.NoteTypeBuffered)
	}
	if c.Notes.IVFactor == 0 {
		c.Notes.IVFactor = 0.90
	}
	if c.Initial.RebalancingFrequency == "" {
		c.Initial.RebalancingFrequency = string(domain.RebalanceYearly)
	}
	if c.Initial.DefaultInflationRate == 0 {
		c.Initial.DefaultInflationRate = 0.02
	}
	if c.Output.ResultsDirectory == "" {
		c.Output.ResultsDirectory = "results"
	}
}

// Validate checks every sweep dimension and shared setting. The first
// violation is returned wrapped around its sentinel.
func (c *Config) Validate() error {
	if len(c.Time.StartYears) == 0 {
		return fmt.Errorf("%w: time_parameters.start_years", ErrEmptyDimension)
	}
	if len(c.Time.TimeHorizons) == 0 {
		return fmt.Errorf("%w: time_parameters.time_horizons", ErrEmptyDimension)
	}
	for _, h := range c.Time.TimeHorizons {
		if h <= 0 {
			return fmt.Errorf("%w: time horizon %d must be positive", ErrInvalidInitial, h)
		}
	}

	if len(c.Allocations) == 0 {
		return fmt.Errorf("%w: portfolio_allocations", ErrEmptyDimension)
	}
	for name, w := range c.Allocations {
		alloc := domain.Allocation{Equity: w.Equity, Notes: w.Notes, Bonds: w.Bonds}
		if err := alloc.Validate(); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidAllocation, name, err)
		}
	}

	if len(c.Notes.ProtectionLevels) == 0 && c.anyNoteAllocation() {
		return fmt.Errorf("%w: note_parameters.protection_levels", ErrEmptyDimension)
	}
	for _, p := range c.Notes.ProtectionLevels {
		if p < 0 || p >= 1 {
			return fmt.Errorf("%w: %g", ErrInvalidProtection, p)
		}
	}
	if !domain.NoteType(c.Notes.NoteType).Valid() {
		return fmt.Errorf("config: unknown note type %q", c.Notes.NoteType)
	}
	if c.Notes.IVFactor <= 0 {
		return fmt.Errorf("config: iv_factor must be positive, got %g", c.Notes.IVFactor)
	}

	switch domain.WithdrawalMethod(c.Withdrawal.Method) {
	case domain.WithdrawalFixedPercent, domain.WithdrawalFixedDollar, domain.WithdrawalRMD:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMethod, c.Withdrawal.Method)
	}
	if len(c.Withdrawal.Rates) == 0 && domain.WithdrawalMethod(c.Withdrawal.Method) != domain.WithdrawalRMD {
		return fmt.Errorf("%w: withdrawal_parameters.rates", ErrEmptyDimension)
	}
	for _, r := range c.Withdrawal.Rates {
		if r < 0 || r > 1 {
			return fmt.Errorf("%w: %g", ErrInvalidRate, r)
		}
	}
	if domain.WithdrawalMethod(c.Withdrawal.Method) == domain.WithdrawalRMD && c.Withdrawal.InitialAge <= 0 {
		return fmt.Errorf("%w: rmd requires withdrawal_parameters.initial_age", ErrInvalidInitial)
	}

	if c.Initial.StartingAmount <= 0 {
		return fmt.Errorf("%w: starting_amount must be positive, got %g", ErrInvalidInitial, c.Initial.StartingAmount)
	}
	if c.Initial.AnnualContribution < 0 {
		return fmt.Errorf("%w: annual_contribution must be non-negative", ErrInvalidInitial)
	}
	switch domain.RebalanceFrequency(c.Initial.RebalancingFrequency) {
	case domain.RebalanceYearly, domain.RebalanceQuarterly, domain.RebalanceMonthly, domain.RebalanceNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, c.Initial.RebalancingFrequency)
	}

	return nil
}

// AllocationNames returns the configured allocation names in deterministic
// order. Grid expansion iterates these so two runs over the same file
// schedule identical scenario sequences.
func (c *Config) AllocationNames() []string {
	names := make([]string, 0, len(c.Allocations))
	for name := range c.Allocations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) anyNoteAllocation() bool {
	for _, w := range c.Allocations {
		if w.Notes > 0 {
			return true
		}
	}
	return false
}

package withdrawal

import (
	"errors"
	"math"
	"testing"

	"portfolio-note-lab/internal/domain"
)

func TestFixedPercent_TracksCurrentValue(t *testing.T) {
	s := NewFixedPercentStrategy(0.04)

	got := s.Compute(Input{CurrentValue: 1_000_000, InitialValue: 1_000_000})
	if math.Abs(got-40_000) > 1e-9 {
		t.Errorf("expected 40000, got %f", got)
	}

	// Shrinking portfolio shrinks the withdrawal.
	got = s.Compute(Input{CurrentValue: 500_000, InitialValue: 1_000_000, ElapsedYears: 5})
	if math.Abs(got-20_000) > 1e-9 {
		t.Errorf("expected 20000, got %f", got)
	}
}

func TestFixedPercent_ZeroValuePortfolio(t *testing.T) {
	s := NewFixedPercentStrategy(0.04)
	if got := s.Compute(Input{CurrentValue: 0}); got != 0 {
		t.Errorf("expected 0 withdrawal from empty portfolio, got %f", got)
	}
}

func TestFixedDollar_ConstantWithoutInflation(t *testing.T) {
	s := NewFixedDollarStrategy(0.04, nil)

	for _, elapsed := range []int{0, 1, 10, 30} {
		got := s.Compute(Input{CurrentValue: 250_000, InitialValue: 1_000_000, ElapsedYears: elapsed})
		if math.Abs(got-40_000) > 1e-9 {
			t.Errorf("elapsed %d: expected constant 40000, got %f", elapsed, got)
		}
	}
}

func TestFixedDollar_InflationCompounds(t *testing.T) {
	inflation := []float64{0.03, 0.02, 0.04}
	s := NewFixedDollarStrategy(0.04, inflation)

	got := s.Compute(Input{InitialValue: 1_000_000, ElapsedYears: 3})
	want := 40_000 * 1.03 * 1.02 * 1.04
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestFixedDollar_InflationSeriesExhaustedReusesLastRate(t *testing.T) {
	inflation := []float64{0.02}
	s := NewFixedDollarStrategy(0.04, inflation)

	got := s.Compute(Input{InitialValue: 1_000_000, ElapsedYears: 3})
	want := 40_000 * math.Pow(1.02, 3)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestRMD_DivisorLookup(t *testing.T) {
	s := NewRMDStrategy()

	// Age 72: divisor 27.4.
	got := s.Compute(Input{CurrentValue: 274_000, InitialAge: 72, ElapsedYears: 0})
	if math.Abs(got-10_000) > 1e-6 {
		t.Errorf("age 72: expected 10000, got %f", got)
	}

	// Age 80 after eight elapsed years: divisor 20.2.
	got = s.Compute(Input{CurrentValue: 202_000, InitialAge: 72, ElapsedYears: 8})
	if math.Abs(got-10_000) > 1e-6 {
		t.Errorf("age 80: expected 10000, got %f", got)
	}
}

func TestRMD_AgesOutsideTableClampToBoundary(t *testing.T) {
	if d := Divisor(60); d != 27.4 {
		t.Errorf("age below table: expected boundary divisor 27.4, got %f", d)
	}
	if d := Divisor(110); d != 6.4 {
		t.Errorf("age above table: expected boundary divisor 6.4, got %f", d)
	}
}

func TestFromConfig_AllVariants(t *testing.T) {
	cases := []struct {
		cfg    domain.WithdrawalConfig
		wantID string
	}{
		{domain.WithdrawalConfig{Method: domain.WithdrawalFixedPercent, Rate: 0.04}, "fixed_percent_0.04"},
		{domain.WithdrawalConfig{Method: domain.WithdrawalFixedDollar, Rate: 0.05}, "fixed_dollar_0.05"},
		{domain.WithdrawalConfig{Method: domain.WithdrawalRMD, InitialAge: 72}, "rmd"},
	}

	for _, tc := range cases {
		s, err := FromConfig(tc.cfg, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.cfg.Method, err)
		}
		if s.ID() != tc.wantID {
			t.Errorf("expected id %q, got %q", tc.wantID, s.ID())
		}
	}
}

func TestFromConfig_InflationAdjustedFixedDollar(t *testing.T) {
	cfg := domain.WithdrawalConfig{
		Method:            domain.WithdrawalFixedDollar,
		Rate:              0.04,
		InflationAdjusted: true,
	}

	s, err := FromConfig(cfg, []float64{0.03})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.Compute(Input{InitialValue: 1_000_000, ElapsedYears: 1})
	if math.Abs(got-41_200) > 1e-6 {
		t.Errorf("expected inflation-adjusted 41200, got %f", got)
	}
}

func TestFromConfig_Errors(t *testing.T) {
	if _, err := FromConfig(domain.WithdrawalConfig{Method: "percent_of_peak"}, nil); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
	if _, err := FromConfig(domain.WithdrawalConfig{Method: domain.WithdrawalFixedPercent, Rate: -0.01}, nil); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
}

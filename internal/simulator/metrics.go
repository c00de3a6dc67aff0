package simulator

import "math"

// mean calculates the arithmetic mean of values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev calculates sample standard deviation (n-1 denominator).
func stddev(values []float64, m float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - m
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// maxDrawdown calculates the largest fractional peak-to-trough decline over
// the value series. values must be in chronological order and start with the
// initial portfolio value.
func maxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	peak := values[0]
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// sharpeRatio calculates (mean return − average risk-free rate) / volatility.
// Returns 0 when volatility is 0 (flat return series carries no risk signal).
func sharpeRatio(meanReturn, avgRiskFree, volatility float64) float64 {
	if volatility == 0 {
		return 0
	}
	return (meanReturn - avgRiskFree) / volatility
}

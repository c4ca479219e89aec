// Package stats provides the statistical primitives shared by the analytics
// calculators. All functions are pure and safe for concurrent use; empty or
// degenerate input yields zero values, never an error.
package stats

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile (0-100) of values using linear
// interpolation between closest ranks. Empty input returns 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	pos := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// Mean returns the arithmetic mean of values, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation (divide by n, not n-1).
// Empty input returns 0.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// HHI computes the Herfindahl-Hirschman Index of a share distribution.
// Shares are normalized to percentages of their sum before squaring, so the
// result ranges 0-10000 regardless of the input scale. Empty or zero-sum
// input returns 0.
func HHI(shares []float64) float64 {
	var total float64
	for _, s := range shares {
		total += s
	}
	if total <= 0 {
		return 0
	}
	var hhi float64
	for _, s := range shares {
		pct := s / total * 100
		hhi += pct * pct
	}
	return hhi
}

// GrowthRate returns the percentage change from previous to current.
// A zero previous value returns 0 rather than dividing by zero; callers that
// need to distinguish "no data" from "no growth" must check the inputs.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// MovingAverage returns the trailing moving average of values with the given
// window size. Positions with fewer than window preceding values average what
// is available. A window below 1 or empty input returns nil.
func MovingAverage(values []float64, window int) []float64 {
	if len(values) == 0 || window < 1 {
		return nil
	}
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
			out[i] = sum / float64(window)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

// SlopeOf returns the least-squares regression slope of values against their
// indices (one unit per sample). Fewer than 2 values returns 0.
func SlopeOf(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	// x = 0..n-1, so the x mean and variance have closed forms.
	xMean := float64(n-1) / 2
	yMean := Mean(values)
	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

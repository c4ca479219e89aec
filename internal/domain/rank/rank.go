// Package rank computes percentile positions of a target value against a
// peer population.
package rank

import "sort"

// Rank returns the rank-of-value percentile (0-100) of target within
// population: the fraction of the sorted population strictly below the first
// value >= target. A target above every population value ranks 100.
//
// This is the rank-of-value direction, not an inverse CDF: Rank answers
// "what share of peers does this value clear", not "what value sits at this
// percentile". Empty population returns 0.
func Rank(population []float64, target float64) float64 {
	if len(population) == 0 {
		return 0
	}
	sorted := append([]float64(nil), population...)
	sort.Float64s(sorted)

	idx := sort.SearchFloat64s(sorted, target)
	// SearchFloat64s returns the first index with value >= target, or len
	// when target exceeds every value.
	return float64(idx) / float64(len(sorted)) * 100
}
